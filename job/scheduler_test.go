package job

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/diagnostic"
)

func TestSchedulerRunsIndependentJobs(t *testing.T) {
	sink := diagnostic.NewSink()
	s := NewScheduler(sink)

	a := s.Enqueue(TypeConstantDefinition, "a.sp", ast.FileRange{}, 1)
	b := s.Enqueue(TypeConstantDefinition, "a.sp", ast.FileRange{}, 2)

	s.Run(func(s *Scheduler, j *Job) StepResult {
		j.Output = j.Input.(int) * 10
		return StepDone()
	})

	assert.True(t, s.AllDone())
	assert.Equal(t, 10, s.Job(a).Output)
	assert.Equal(t, 20, s.Job(b).Output)
	assert.Empty(t, sink.Diagnostics())
}

func TestSchedulerResolvesWaitChain(t *testing.T) {
	sink := diagnostic.NewSink()
	s := NewScheduler(sink)

	producer := s.Enqueue(TypeConstantDefinition, "a.sp", ast.FileRange{}, 7)
	consumer := s.Enqueue(TypeConstantDefinition, "a.sp", ast.FileRange{}, nil)

	s.Run(func(s *Scheduler, j *Job) StepResult {
		if j.ID == consumer {
			if s.Job(producer).State != Done {
				return StepWait(producer)
			}
			j.Output = s.Job(producer).Output.(int) + 1
			return StepDone()
		}
		j.Output = j.Input.(int)
		return StepDone()
	})

	require.True(t, s.AllDone())
	assert.Equal(t, 8, s.Job(consumer).Output)
}

func TestSchedulerDetectsCircularDependency(t *testing.T) {
	sink := diagnostic.NewSink()
	s := NewScheduler(sink)

	a := s.Enqueue(TypeConstantDefinition, "a.sp", ast.FileRange{FirstLine: 1}, nil)
	b := s.Enqueue(TypeConstantDefinition, "a.sp", ast.FileRange{FirstLine: 2}, nil)

	s.Run(func(s *Scheduler, j *Job) StepResult {
		if j.ID == a {
			return StepWait(b)
		}
		return StepWait(a)
	})

	assert.False(t, s.AllDone())
	diags := sink.Diagnostics()
	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, diagnostic.CircularDependency, d.Kind)
	}
}

func TestSchedulerStepErrorIsTerminal(t *testing.T) {
	sink := diagnostic.NewSink()
	s := NewScheduler(sink)

	id := s.Enqueue(TypeConstantDefinition, "a.sp", ast.FileRange{}, nil)
	s.Run(func(s *Scheduler, j *Job) StepResult {
		return StepFailed(errors.New("boom"))
	})

	assert.True(t, s.Job(id).State == Done)
	require.Len(t, sink.Diagnostics(), 1)
	assert.Contains(t, sink.Diagnostics()[0].Message, "boom")
}

func TestInstantiationMemoization(t *testing.T) {
	sink := diagnostic.NewSink()
	s := NewScheduler(sink)

	decl := "decl-key"
	scope := "scope-key"

	assert.Empty(t, s.InstantiationCandidates(decl, scope))
	id := s.Enqueue(TypePolymorphicFunction, "a.sp", ast.FileRange{}, nil)
	s.RecordInstantiation(decl, scope, id)

	got := s.InstantiationCandidates(decl, scope)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0])
}
