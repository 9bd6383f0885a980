// Package rest wires the ProTrack HTTP routes.
package rest

import (
	"net/http"

	"github.com/CameronXie/nsa-protrack/internal/api/rest/handlers"
	"github.com/CameronXie/nsa-protrack/internal/api/rest/middlewares"
)

const APIPrefix = "/api/v1"

type RouterConfig struct {
	Health      http.Handler
	Auth        *handlers.AuthHandler
	Account     *handlers.AccountHandler
	Orders      *handlers.OrderHandler
	Clients     *handlers.ClientHandler
	Credentials *handlers.CredentialHandler
	Finances    *handlers.FinanceHandler
	Reports     *handlers.ReportHandler
	Users       *handlers.UserHandler

	AuthenticationMiddleware middlewares.Middleware
	AuthorisationMiddleware  middlewares.Middleware
	SignInRateLimiter        middlewares.Middleware
	RequestLogger            middlewares.Middleware
}

// NewMuxWithHandlers initializes a new HTTP handler with routes defined by the given RouterConfig.
// Every /api/v1 route is authenticated first and then authorised against its full path.
func NewMuxWithHandlers(cfg *RouterConfig) http.Handler {
	router := http.NewServeMux()

	router.Handle("GET /health", cfg.Health)
	router.Handle("POST /auth/signup", cfg.SignInRateLimiter.Handle(http.HandlerFunc(cfg.Auth.SignUp)))
	router.Handle("POST /auth/signin", cfg.SignInRateLimiter.Handle(http.HandlerFunc(cfg.Auth.SignIn)))

	api := http.NewServeMux()

	api.HandleFunc("GET "+APIPrefix+"/account", cfg.Account.GetAccount)
	api.HandleFunc("PUT "+APIPrefix+"/account", cfg.Account.UpdateAccount)
	api.HandleFunc("PUT "+APIPrefix+"/account/password", cfg.Account.ChangePassword)

	api.HandleFunc("POST "+APIPrefix+"/orders", cfg.Orders.CreateOrder)
	api.HandleFunc("GET "+APIPrefix+"/orders", cfg.Orders.ListOrders)
	api.HandleFunc("GET "+APIPrefix+"/orders/nearby", cfg.Orders.NearbyOrders)
	api.HandleFunc("GET "+APIPrefix+"/orders/{id}", cfg.Orders.GetOrder)
	api.HandleFunc("PUT "+APIPrefix+"/orders/{id}", cfg.Orders.UpdateOrder)
	api.HandleFunc("DELETE "+APIPrefix+"/orders/{id}", cfg.Orders.DeleteOrder)
	api.HandleFunc("PATCH "+APIPrefix+"/orders/{id}/status", cfg.Orders.UpdateOrderStatus)
	api.HandleFunc("POST "+APIPrefix+"/orders/{id}/confirm", cfg.Orders.ConfirmOrder)

	api.HandleFunc("POST "+APIPrefix+"/clients", cfg.Clients.CreateClient)
	api.HandleFunc("GET "+APIPrefix+"/clients", cfg.Clients.ListClients)
	api.HandleFunc("GET "+APIPrefix+"/clients/{id}", cfg.Clients.GetClient)
	api.HandleFunc("PUT "+APIPrefix+"/clients/{id}", cfg.Clients.UpdateClient)
	api.HandleFunc("DELETE "+APIPrefix+"/clients/{id}", cfg.Clients.DeleteClient)

	api.HandleFunc("POST "+APIPrefix+"/credentials", cfg.Credentials.CreateCredential)
	api.HandleFunc("GET "+APIPrefix+"/credentials", cfg.Credentials.ListCredentials)
	api.HandleFunc("GET "+APIPrefix+"/credentials/expiring", cfg.Credentials.ExpiringCredentials)
	api.HandleFunc("GET "+APIPrefix+"/credentials/{id}", cfg.Credentials.GetCredential)
	api.HandleFunc("PUT "+APIPrefix+"/credentials/{id}", cfg.Credentials.UpdateCredential)
	api.HandleFunc("DELETE "+APIPrefix+"/credentials/{id}", cfg.Credentials.DeleteCredential)

	api.HandleFunc("GET "+APIPrefix+"/finances/summary", cfg.Finances.Summary)

	api.HandleFunc("POST "+APIPrefix+"/reports", cfg.Reports.CreateReport)
	api.HandleFunc("GET "+APIPrefix+"/reports", cfg.Reports.ListReports)
	api.HandleFunc("GET "+APIPrefix+"/reports/fields", cfg.Reports.Fields)
	api.HandleFunc("POST "+APIPrefix+"/reports/generate", cfg.Reports.GenerateReport)
	api.HandleFunc("GET "+APIPrefix+"/reports/{id}", cfg.Reports.GetReport)
	api.HandleFunc("PUT "+APIPrefix+"/reports/{id}", cfg.Reports.UpdateReport)
	api.HandleFunc("DELETE "+APIPrefix+"/reports/{id}", cfg.Reports.DeleteReport)
	api.HandleFunc("POST "+APIPrefix+"/reports/{id}/run", cfg.Reports.RunReport)

	api.HandleFunc("GET "+APIPrefix+"/users", cfg.Users.ListUsers)

	router.Handle(APIPrefix+"/", middlewares.Chain(api, cfg.AuthenticationMiddleware, cfg.AuthorisationMiddleware))

	return cfg.RequestLogger.Handle(router)
}
