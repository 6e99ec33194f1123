package e2e

import (
	"github.com/cucumber/godog"

	"stackwise/e2e/steps/auth"
	"stackwise/e2e/steps/common"
	"stackwise/e2e/steps/review"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register sign-in steps
	auth.RegisterSteps(ctx, tc)

	// Register campaign and decision steps
	review.RegisterSteps(ctx, tc)
}
