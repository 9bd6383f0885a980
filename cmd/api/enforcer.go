package main

import (
	"fmt"
	"log/slog"

	gormadapter "github.com/casbin/gorm-adapter/v3"
	_ "github.com/go-sql-driver/mysql"

	"github.com/CameronXie/nsa-protrack/internal/config"
	"github.com/CameronXie/nsa-protrack/internal/decisionmaker"
	"github.com/CameronXie/nsa-protrack/internal/decisionmaker/casbin"
	"github.com/CameronXie/nsa-protrack/internal/decisionmaker/opa"
	"github.com/CameronXie/nsa-protrack/internal/domain"
	"github.com/CameronXie/nsa-protrack/internal/enforcer"
	"github.com/CameronXie/nsa-protrack/internal/infoprovider"
	"github.com/CameronXie/nsa-protrack/internal/policyretriever"
)

// newPolicyAdapter connects casbin's gorm adapter to the configured policy store.
func newPolicyAdapter(cfg config.AuthzConfig, pg config.PostgresConfig) (*gormadapter.Adapter, error) {
	switch cfg.PolicyStore {
	case config.PolicyStoreMySQL:
		return gormadapter.NewAdapter("mysql", cfg.MySQLDSN)
	default:
		return gormadapter.NewAdapter("postgres", pg.DSN(), true)
	}
}

func newDecisionMaker(cfg *config.Config, logger *slog.Logger) (decisionmaker.DecisionMaker, error) {
	switch cfg.Authz.Engine {
	case config.EngineOPA:
		logger.Info("initializing enforcer with OPA", "policy_file", cfg.Authz.OPAPolicyFile)

		retriever := policyretriever.NewStaticPolicyRetriever(opa.DefaultPolicy)
		if cfg.Authz.OPAPolicyFile != "" {
			retriever = policyretriever.NewFilePolicyRetriever(cfg.Authz.OPAPolicyFile)
		}
		return opa.NewDecisionMaker(retriever, opa.Query), nil

	case config.EngineCasbin:
		logger.Info("initializing enforcer with Casbin", "policy_store", cfg.Authz.PolicyStore)

		adapter, err := newPolicyAdapter(cfg.Authz, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("create casbin policy adapter: %w", err)
		}
		return casbin.NewDecisionMaker(
			casbin.Model,
			adapter,
			casbin.WithDefaultPolicies(casbin.DefaultPolicies, casbin.DefaultGroupings),
		)

	default:
		return nil, fmt.Errorf("unknown authorization engine %q", cfg.Authz.Engine)
	}
}

// newEnforcer resolves roles from the user store; an account without roles is treated as an agent.
func newEnforcer(cfg *config.Config, roles infoprovider.InfoProvider, logger *slog.Logger) (enforcer.Enforcer, error) {
	dm, err := newDecisionMaker(cfg, logger)
	if err != nil {
		return nil, err
	}

	return enforcer.NewEnforcer(dm, infoprovider.WithDefaultRoles(roles, domain.RoleAgent)), nil
}
