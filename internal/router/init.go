package router

import (
	"github.com/oksasatya/auth-microservice/internal/application"
	"github.com/oksasatya/auth-microservice/internal/container"
	pginfra "github.com/oksasatya/auth-microservice/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/auth-microservice/internal/interface/http"
	"github.com/oksasatya/auth-microservice/internal/router/modules"
	"github.com/oksasatya/auth-microservice/pkg/mailer"
)

func buildAuthModule() *modules.AuthModule {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	repo := pginfra.NewUserRepository(pool)
	notifier := mailer.NewQueueNotifier(container.GetRabbitPub(), cfg.MailSendEnabled)

	svc := application.NewService(
		repo,
		container.GetJWT(),
		notifier,
		container.GetRedis(),
		container.GetLogger(),
	)

	handler := handlers.NewAuthHandler(
		svc,
		container.GetLogger(),
		pginfra.NewAuditStore(pool),
	)

	return modules.NewAuthModule(handler)
}

// InitModules initializes all application modules and registers them with the
// router registry. Called once during startup.
func InitModules(r *Registry) {
	r.Add(buildAuthModule())
}
