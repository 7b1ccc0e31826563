package infra

import (
	"fmt"

	"github.com/casbin/casbin/v2"
)

// NewEnforcer builds a policy-less enforcer from the RBAC model file.
// Policies are loaded per company at enforce time.
func NewEnforcer(modelPath string) (*casbin.Enforcer, error) {
	e, err := casbin.NewEnforcer(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load rbac model %s: %w", modelPath, err)
	}
	return e, nil
}
