package docs

// @title           KekeLink Safety Hub API
// @version         1.0
// @description     Realtime safety coordination for keke passengers and drivers: live locations and SOS over /ws, safety reports, route intelligence and admin analytics over HTTP.

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the admin access token.
