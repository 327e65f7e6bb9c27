package http

import (
	"log/slog"

	"github.com/madadgarapp/listings-api/internal/application/notification"
	"github.com/madadgarapp/listings-api/internal/application/push"
	"github.com/madadgarapp/listings-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/madadgarapp/listings-api/internal/infrastructure/jwt"
	s3infra "github.com/madadgarapp/listings-api/internal/infrastructure/s3"
)

// Deps holds all infrastructure dependencies for the router. Services are
// built inside NewRouter from these.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	SessionRepo      *dynamo.SessionRepo
	ItemRepo         *dynamo.ItemRepo
	NotificationRepo *dynamo.NotificationRepo
	DeviceTokenRepo  *dynamo.DeviceTokenRepo
	SendLogRepo      *dynamo.SendLogRepo

	ImageStore *s3infra.Store
	VideoStore *s3infra.Store

	// Dispatcher, Events and Outbox are built in main so the outbox worker
	// can run independently of the HTTP server lifecycle.
	Dispatcher push.Dispatcher
	Events     notification.Events
	Outbox     *notification.Outbox

	JWTProvider *jwtinfra.Provider
	Logger      *slog.Logger
}
