package main

//go:generate swag init -g cmd/turbine/main.go -o docs

// @title           TurbineAI API
// @version         0.1.0
// @description     Predictive maintenance health scores behind OTP login.
// @host            localhost:8000
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
