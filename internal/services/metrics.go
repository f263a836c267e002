// Package services – engine metrics.
//
// Prometheus collectors for the engine's own events, alongside the HTTP
// metrics emitted by the middleware layer. Cardinality stays bounded: the
// only label is the action kind from the fixed registry.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// monsterDeaths counts death transitions by the kind that caused them.
	monsterDeaths = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monster_deaths_total",
			Help: "Monster death transitions, by triggering action kind.",
		},
		[]string{"kind"},
	)

	// recoveryGrants counts nightly recovery applications.
	recoveryGrants = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "monster_recovery_grants_total",
			Help: "Nightly recovery grants applied to live monsters.",
		},
	)

	// actionsApplied counts successfully applied actions by kind.
	actionsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "actions_applied_total",
			Help: "Actions that passed the cadence guard and mutated health.",
		},
		[]string{"kind"},
	)

	// cadenceDenials counts actions refused by the daily cadence guard.
	cadenceDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_denials_total",
			Help: "Actions denied because the daily allowance was consumed.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(monsterDeaths, recoveryGrants, actionsApplied, cadenceDenials)
}
