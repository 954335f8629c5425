package tool_test

import (
	"context"
	"io"
	"sync"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/content"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/delivery"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/format"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/render"
)

// renderSvcMock is a mock implementation of the render service.
type renderSvcMock struct {
	RenderFunc   func(ctx context.Context, doc render.SourceDocument) (render.Artifact, error)
	ClassifyFunc func(text string, points []int) (content.Stream, error)

	calls struct {
		Render []struct {
			Ctx context.Context
			Doc render.SourceDocument
		}
	}
	lockRender sync.RWMutex
}

func (mock *renderSvcMock) Render(ctx context.Context, doc render.SourceDocument) (render.Artifact, error) {
	if mock.RenderFunc == nil {
		panic("renderSvcMock.RenderFunc: method is nil but renderSvc.Render was just called")
	}
	mock.lockRender.Lock()
	mock.calls.Render = append(mock.calls.Render, struct {
		Ctx context.Context
		Doc render.SourceDocument
	}{Ctx: ctx, Doc: doc})
	mock.lockRender.Unlock()
	return mock.RenderFunc(ctx, doc)
}

// RenderCalls gets all the calls that were made to Render.
func (mock *renderSvcMock) RenderCalls() []struct {
	Ctx context.Context
	Doc render.SourceDocument
} {
	mock.lockRender.RLock()
	defer mock.lockRender.RUnlock()
	return mock.calls.Render
}

func (mock *renderSvcMock) Classify(text string, points []int) (content.Stream, error) {
	if mock.ClassifyFunc == nil {
		panic("renderSvcMock.ClassifyFunc: method is nil but renderSvc.Classify was just called")
	}
	return mock.ClassifyFunc(text, points)
}

// storeMock is a mock implementation of the document store.
type storeMock struct {
	SaveFunc func(name string, b []byte) (delivery.Stored, error)
	ReadFunc func(name string) ([]byte, error)

	calls struct {
		Save []struct {
			Name string
			B    []byte
		}
	}
	lockSave sync.RWMutex
}

func (mock *storeMock) Save(name string, b []byte) (delivery.Stored, error) {
	if mock.SaveFunc == nil {
		panic("storeMock.SaveFunc: method is nil but docStore.Save was just called")
	}
	mock.lockSave.Lock()
	mock.calls.Save = append(mock.calls.Save, struct {
		Name string
		B    []byte
	}{Name: name, B: b})
	mock.lockSave.Unlock()
	return mock.SaveFunc(name, b)
}

// SaveCalls gets all the calls that were made to Save.
func (mock *storeMock) SaveCalls() []struct {
	Name string
	B    []byte
} {
	mock.lockSave.RLock()
	defer mock.lockSave.RUnlock()
	return mock.calls.Save
}

func (mock *storeMock) Read(name string) ([]byte, error) {
	if mock.ReadFunc == nil {
		panic("storeMock.ReadFunc: method is nil but docStore.Read was just called")
	}
	return mock.ReadFunc(name)
}

// uploaderMock is a mock implementation of tool.Uploader.
type uploaderMock struct {
	UploadFunc func(ctx context.Context, name string, r io.Reader) (delivery.Remote, error)
}

func (mock *uploaderMock) Upload(ctx context.Context, name string, r io.Reader) (delivery.Remote, error) {
	if mock.UploadFunc == nil {
		panic("uploaderMock.UploadFunc: method is nil but Uploader.Upload was just called")
	}
	return mock.UploadFunc(ctx, name, r)
}

// previewerMock is a mock implementation of the document previewer.
type previewerMock struct {
	PreviewFunc func(raw []byte) (format.Preview, error)
}

func (mock *previewerMock) Preview(raw []byte) (format.Preview, error) {
	if mock.PreviewFunc == nil {
		panic("previewerMock.PreviewFunc: method is nil but previewer.Preview was just called")
	}
	return mock.PreviewFunc(raw)
}
