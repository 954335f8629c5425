package render_test

import (
	"context"
	"sync"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/compiler"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/render"
)

// backendMock is a mock implementation of render.Backend.
type backendMock struct {
	NameFunc   func() string
	RenderFunc func(ctx context.Context, job render.Job) (render.Artifact, error)

	calls struct {
		Render []struct {
			Ctx context.Context
			Job render.Job
		}
	}
	lockRender sync.RWMutex
}

func (mock *backendMock) Name() string {
	if mock.NameFunc == nil {
		return "mock"
	}
	return mock.NameFunc()
}

func (mock *backendMock) Render(ctx context.Context, job render.Job) (render.Artifact, error) {
	if mock.RenderFunc == nil {
		panic("backendMock.RenderFunc: method is nil but Backend.Render was just called")
	}
	mock.lockRender.Lock()
	mock.calls.Render = append(mock.calls.Render, struct {
		Ctx context.Context
		Job render.Job
	}{Ctx: ctx, Job: job})
	mock.lockRender.Unlock()
	return mock.RenderFunc(ctx, job)
}

// RenderCalls gets all the calls that were made to Render.
func (mock *backendMock) RenderCalls() []struct {
	Ctx context.Context
	Job render.Job
} {
	mock.lockRender.RLock()
	defer mock.lockRender.RUnlock()
	return mock.calls.Render
}

// compilerMock is a mock implementation of render.Compiler.
type compilerMock struct {
	CompileFunc func(ctx context.Context, renderID string, source string) (compiler.Output, error)

	calls struct {
		Compile []struct {
			Ctx      context.Context
			RenderID string
			Source   string
		}
	}
	lockCompile sync.RWMutex
}

var _ render.Compiler = &compilerMock{}

func (mock *compilerMock) Compile(ctx context.Context, renderID string, source string) (compiler.Output, error) {
	if mock.CompileFunc == nil {
		panic("compilerMock.CompileFunc: method is nil but Compiler.Compile was just called")
	}
	mock.lockCompile.Lock()
	mock.calls.Compile = append(mock.calls.Compile, struct {
		Ctx      context.Context
		RenderID string
		Source   string
	}{Ctx: ctx, RenderID: renderID, Source: source})
	mock.lockCompile.Unlock()
	return mock.CompileFunc(ctx, renderID, source)
}

// CompileCalls gets all the calls that were made to Compile.
func (mock *compilerMock) CompileCalls() []struct {
	Ctx      context.Context
	RenderID string
	Source   string
} {
	mock.lockCompile.RLock()
	defer mock.lockCompile.RUnlock()
	return mock.calls.Compile
}
