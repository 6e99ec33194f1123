package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string, headers map[string]string) error
	Status() int
	Body() []byte
}

// RegisterSteps registers sign-in related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^I sign in as "([^"]*)"$`, steps.signIn)
	ctx.Step(`^I sign out$`, steps.signOut)
	ctx.Step(`^I open "([^"]*)" in a browser$`, steps.openInBrowser)
}

type authSteps struct {
	tc TestContext
}

func (s *authSteps) signIn(ctx context.Context, email string) error {
	if err := s.tc.POST("/auth/signin", map[string]any{"email": email}); err != nil {
		return err
	}
	if s.tc.Status() != http.StatusOK {
		return fmt.Errorf("sign in as %s failed with %d: %s", email, s.tc.Status(), s.tc.Body())
	}
	return nil
}

func (s *authSteps) signOut(ctx context.Context) error {
	return s.tc.POST("/auth/signout", nil)
}

func (s *authSteps) openInBrowser(ctx context.Context, path string) error {
	return s.tc.GET(path, map[string]string{"Accept": "text/html"})
}
