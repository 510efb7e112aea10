//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

package reranker

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ragware/kbcore/embedder"
)

// Strategy names.
const (
	// StrategyCrossEncoder scores every (query, document) pair with a pairwise
	// scoring model. Most accurate, most expensive.
	StrategyCrossEncoder = "cross-encoder"
	// StrategyLightweight scores candidates by embedding cosine similarity
	// with metadata boosts. Cheaper fallback for constrained deployments.
	StrategyLightweight = "lightweight"

	// DefaultStrategy is used when no strategy is configured.
	DefaultStrategy = StrategyCrossEncoder
)

// Config carries the strategy-independent construction inputs.
// Each strategy uses the fields it needs and ignores the rest.
type Config struct {
	// TopK bounds the number of results a strategy returns. <= 0 means all.
	TopK int

	// Scorer is the pairwise scoring capability for the cross-encoder strategy.
	Scorer Scorer

	// Embedder is the embedding capability for the lightweight strategy.
	Embedder embedder.Embedder
}

// Builder creates a Reranker from a Config.
type Builder func(cfg *Config) (Reranker, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Builder)
)

// Register registers a strategy builder under the given name.
// Strategy packages call this from init.
func Register(name string, builder Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = builder
}

// New builds the reranker strategy selected by name.
// An empty name selects DefaultStrategy. An unknown name is a configuration
// error and fails immediately.
func New(name string, cfg *Config) (Reranker, error) {
	if name == "" {
		name = DefaultStrategy
	}
	if cfg == nil {
		cfg = &Config{}
	}
	registryMu.RLock()
	builder, ok := registry[strings.ToLower(name)]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown reranker strategy: %q", name)
	}
	r, err := builder(cfg)
	if err != nil {
		return nil, fmt.Errorf("build reranker strategy %q: %w", name, err)
	}
	return r, nil
}
