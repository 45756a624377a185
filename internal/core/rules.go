package core

import "haccpcore/pkg/domain"

// NewDefaultRulesEngine builds a rules engine with the built-in monitoring rules.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewCriticalLimitRule())
	engine.Register(NewUnmeasuredLimitRule())
	return engine
}
