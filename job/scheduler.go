package job

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/diagnostic"
)

// StepFunc runs one Working-phase attempt at a job and reports what
// happened: Done (with Output already written into the job by the caller),
// Waiting (on another job), or a hard failure. It must not mutate any other
// job's Input/Output; new jobs are enqueued through Scheduler.Enqueue.
type StepFunc func(s *Scheduler, j *Job) StepResult

// StepResult is the scheduler-facing outcome of one step invocation.
type StepResult struct {
	Done    bool
	WaitFor ID
	Err     error
}

func StepDone() StepResult             { return StepResult{Done: true} }
func StepWait(on ID) StepResult        { return StepResult{WaitFor: on} }
func StepFailed(err error) StepResult  { return StepResult{Err: err} }

// instantiationKey identifies a memoizable polymorphic instantiation
// request: which declaration, instantiated from which parent scope, with
// which parameter vector. The LRU cache below is keyed on this after
// linear-scanning candidates for parameter-vector equality, since
// model.ParameterVector carries ConstantValues that are not comparable with
// `==` and so cannot be a literal Go map key.
type instantiationKey struct {
	decl  any
	scope any
}

// Scheduler owns the flat, append-only job list of §4.3 and drives it to
// completion. It is single-threaded and cooperative (§5): the only
// suspension mechanism is a step returning Wait.
type Scheduler struct {
	jobs []*Job
	sink *diagnostic.Sink

	// instantiations memoizes in-progress/completed polymorphic
	// instantiation jobs by declaration+parent-scope, each bucket holding
	// candidate job IDs to be checked for parameter-vector equality by the
	// caller (package typecheck owns that equality check since it knows
	// the shape of each job's Input). The LRU bound keeps a long-running
	// LSP session's instantiation cache from growing without limit as
	// files are repeatedly edited and re-typed (§4.8's memoization
	// invariant only requires *a* shared job per equivalent parameter
	// vector while both are live; evicting a cold entry just means the
	// next equivalent call re-instantiates, which is correct, only
	// slower).
	instantiations *lru.Cache[instantiationKey, []ID]
}

// NewScheduler returns an empty scheduler reporting diagnostics to sink.
func NewScheduler(sink *diagnostic.Sink) *Scheduler {
	cache, err := lru.New[instantiationKey, []ID](4096)
	if err != nil {
		// Only returns an error for a non-positive size, which 4096 never is.
		panic(err)
	}
	return &Scheduler{sink: sink, instantiations: cache}
}

// Enqueue appends a new job in the Working state and returns its ID.
func (s *Scheduler) Enqueue(kind Kind, filePath string, r ast.FileRange, input any) ID {
	id := ID(len(s.jobs))
	s.jobs = append(s.jobs, newJob(id, kind, filePath, r, input))
	return id
}

// Job returns the job with the given ID.
func (s *Scheduler) Job(id ID) *Job { return s.jobs[id] }

// Jobs returns every job currently in the scheduler, in ID order. Used by
// the LSP bridge (§4.9) and the CLI query command.
func (s *Scheduler) Jobs() []*Job { return s.jobs }

// Sink returns the diagnostics sink this scheduler reports to.
func (s *Scheduler) Sink() *diagnostic.Sink { return s.sink }

// InstantiationCandidates returns the job IDs previously recorded under key,
// for the caller to check against a new request's parameter vector.
func (s *Scheduler) InstantiationCandidates(decl, scope any) []ID {
	ids, _ := s.instantiations.Get(instantiationKey{decl: decl, scope: scope})
	return ids
}

// RecordInstantiation appends id to the candidate list for key, so future
// equivalent requests can find and reuse it.
func (s *Scheduler) RecordInstantiation(decl, scope any, id ID) {
	key := instantiationKey{decl: decl, scope: scope}
	ids, _ := s.instantiations.Get(key)
	s.instantiations.Add(key, append(ids, id))
}

// Run repeatedly scans for a runnable job (Working, or Waiting on a job
// that is now Done) and steps it, first-fit by index, until no progress is
// possible (§4.3's scanning/ordering rule). Any job still not Done at that
// point is part of a dependency cycle and is reported as such, anchored at
// its own source range, and the scheduler stops with whatever jobs did
// complete.
func (s *Scheduler) Run(step StepFunc) {
	for {
		progressed := false

		for i := 0; i < len(s.jobs); i++ {
			j := s.jobs[i]
			if j.State == Done {
				continue
			}
			if j.State == Waiting && s.jobs[j.WaitingFor].State != Done {
				continue
			}

			result := step(s, j)
			switch {
			case result.Err != nil:
				// A step returning Err has already had its chance to
				// report a precise diagnostic through the sink; the
				// scheduler always reports the error itself as well,
				// whether or not the step already did. The job is
				// terminal (Done with a zero Output) rather than
				// retried forever, so the scheduler still makes
				// progress and moves on to independent work (§7).
				s.sink.Report(diagnostic.Type, j.FilePath, j.Range, "%v", result.Err)
				j.State = Done
				progressed = true
			case result.Done:
				j.State = Done
				progressed = true
			default:
				if j.State != Waiting || j.WaitingFor != result.WaitFor {
					j.State = Waiting
					j.WaitingFor = result.WaitFor
					j.Arena.Reset()
					progressed = true
				}
			}
		}

		if !progressed {
			break
		}
	}

	for _, j := range s.jobs {
		if j.State != Done {
			s.sink.Report(diagnostic.CircularDependency, j.FilePath, j.Range,
				"Circular dependency detected (job #%d, %s, waiting on #%d)", j.ID, j.Kind, j.WaitingFor)
		}
	}
}

// AllDone reports whether every job in the scheduler has reached Done.
func (s *Scheduler) AllDone() bool {
	for _, j := range s.jobs {
		if j.State != Done {
			return false
		}
	}
	return true
}

// String renders a short summary, used by `simplec query` and tests.
func (s *Scheduler) String() string {
	return fmt.Sprintf("Scheduler{jobs=%d}", len(s.jobs))
}
