package observability

import (
	"log/slog"

	"github.com/aretw0/statesim/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus collectors fed by MetricHooks.
type Metrics struct {
	Transitions    *prometheus.CounterVec
	ActionFailures *prometheus.CounterVec
	Undos          prometheus.Counter
	ReplaySteps    prometheus.Counter
	HistoryDepth   prometheus.Gauge
}

// NewMetrics creates and registers the engine collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statesim_transitions_total",
				Help: "Total number of applied transitions",
			},
			[]string{"event", "from", "to"},
		),
		ActionFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statesim_action_failures_total",
				Help: "Total number of rolled-back transitions due to action errors",
			},
			[]string{"event"},
		),
		Undos: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statesim_undos_total",
			Help: "Total number of undo operations",
		}),
		ReplaySteps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statesim_replay_steps_total",
			Help: "Total number of replayed steps (including skipped failures)",
		}),
		HistoryDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "statesim_history_depth",
			Help: "Current history length of the live simulation",
		}),
	}
	reg.MustRegister(m.Transitions, m.ActionFailures, m.Undos, m.ReplaySteps, m.HistoryDepth)
	return m
}

// MetricHooks returns a hook set that records engine activity into m.
func MetricHooks(m *Metrics) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLoad: func(*domain.LoadEvent) {
			m.HistoryDepth.Set(1)
		},
		OnTransition: func(ev *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(ev.Event, ev.From, ev.To).Inc()
			m.HistoryDepth.Inc()
		},
		OnActionFailure: func(ev *domain.ActionFailureEvent) {
			m.ActionFailures.WithLabelValues(ev.Event).Inc()
		},
		OnUndo: func(ev *domain.UndoEvent) {
			m.Undos.Inc()
			m.HistoryDepth.Set(float64(ev.Depth))
		},
		OnReplayStep: func(*domain.ReplayStepEvent) {
			m.ReplaySteps.Inc()
		},
	}
}

// LogHooks returns a hook set that emits one structured log line per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLoad: func(ev *domain.LoadEvent) {
			logger.Info("machine_loaded", "machine", ev.MachineID, "initial_state", ev.InitialState)
		},
		OnTransition: func(ev *domain.TransitionEvent) {
			logger.Info("transition", "machine", ev.MachineID, "event", ev.Event, "from", ev.From, "to", ev.To)
		},
		OnActionFailure: func(ev *domain.ActionFailureEvent) {
			logger.Warn("action_failure", "machine", ev.MachineID, "event", ev.Event, "state", ev.State, "err", ev.Message)
		},
		OnUndo: func(ev *domain.UndoEvent) {
			logger.Info("undo", "machine", ev.MachineID, "restored_state", ev.RestoredState, "depth", ev.Depth)
		},
		OnReplayStep: func(ev *domain.ReplayStepEvent) {
			if ev.Err != nil {
				logger.Warn("replay_step_skipped", "machine", ev.MachineID, "index", ev.Index, "event", ev.Event, "err", ev.Err)
				return
			}
			logger.Info("replay_step", "machine", ev.MachineID, "index", ev.Index, "event", ev.Event)
		},
	}
}

// Combine merges hook sets; every non-nil callback is invoked in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, hooks := range sets {
		hooks := hooks
		if hooks.OnLoad != nil {
			prev := out.OnLoad
			out.OnLoad = func(ev *domain.LoadEvent) {
				if prev != nil {
					prev(ev)
				}
				hooks.OnLoad(ev)
			}
		}
		if hooks.OnTransition != nil {
			prev := out.OnTransition
			out.OnTransition = func(ev *domain.TransitionEvent) {
				if prev != nil {
					prev(ev)
				}
				hooks.OnTransition(ev)
			}
		}
		if hooks.OnActionFailure != nil {
			prev := out.OnActionFailure
			out.OnActionFailure = func(ev *domain.ActionFailureEvent) {
				if prev != nil {
					prev(ev)
				}
				hooks.OnActionFailure(ev)
			}
		}
		if hooks.OnUndo != nil {
			prev := out.OnUndo
			out.OnUndo = func(ev *domain.UndoEvent) {
				if prev != nil {
					prev(ev)
				}
				hooks.OnUndo(ev)
			}
		}
		if hooks.OnReplayStep != nil {
			prev := out.OnReplayStep
			out.OnReplayStep = func(ev *domain.ReplayStepEvent) {
				if prev != nil {
					prev(ev)
				}
				hooks.OnReplayStep(ev)
			}
		}
	}
	return out
}
