package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/config"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/auth"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/jwt"
)

// token mints an access token for local testing against the API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	user := flag.String("user", "dev", "user id claim")
	worker := flag.String("worker", "", "worker id claim")
	inst := flag.String("institution", "", "institution id claim")
	role := flag.String("role", string(auth.RoleWorker), "worker or admin")
	flag.Parse()

	svc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	token, expiresAt, err := svc.GenerateAccessToken(auth.Subject{
		UserID:        *user,
		WorkerID:      *worker,
		InstitutionID: *inst,
		Role:          auth.Role(*role),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintln(os.Stderr, "expires at", time.Unix(expiresAt, 0).Format(time.RFC3339))
}
