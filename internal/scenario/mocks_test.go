// internal/scenario/mocks_test.go
package scenario

import (
	"context"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/mock"

	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/page"
)

// callLog records the order of interesting calls across mocks.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type MockPage struct {
	mock.Mock
	log *callLog
}

func (m *MockPage) record(name string) {
	if m.log != nil {
		m.log.add(name)
	}
}

func (m *MockPage) FillIdentity(ctx context.Context, first, last, email, mobile string) error {
	m.record("fill_identity")
	return m.Called(ctx, first, last, email, mobile).Error(0)
}

func (m *MockPage) SelectGender(ctx context.Context, g page.GenderOption) error {
	m.record("select_gender")
	return m.Called(ctx, g).Error(0)
}

func (m *MockPage) FillAddress(ctx context.Context, text string) error {
	m.record("fill_address")
	return m.Called(ctx, text).Error(0)
}

func (m *MockPage) AttachFile(ctx context.Context, path string) error {
	m.record("attach_file")
	return m.Called(ctx, path).Error(0)
}

func (m *MockPage) Submit(ctx context.Context) error {
	m.record("submit")
	return m.Called(ctx).Error(0)
}

func (m *MockPage) SubmissionOutcome(ctx context.Context) page.Observation {
	m.record("outcome")
	return m.Called(ctx).Get(0).(page.Observation)
}

func (m *MockPage) NativeValidationMessage(ctx context.Context, id page.FieldID) (string, bool) {
	m.record("native_message")
	args := m.Called(ctx, id)
	return args.String(0), args.Bool(1)
}

func (m *MockPage) IsFieldInvalid(ctx context.Context, id page.FieldID) bool {
	m.record("field_invalid")
	return m.Called(ctx, id).Bool(0)
}

type MockSession struct {
	mock.Mock
	log *callLog
}

func (m *MockSession) Run(ctx context.Context, actions ...chromedp.Action) error {
	return m.Called(ctx).Error(0)
}

func (m *MockSession) Screenshot(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockSession) ID() string { return m.Called().String(0) }

func (m *MockSession) Close(ctx context.Context) error {
	if m.log != nil {
		m.log.add("close")
	}
	return m.Called(ctx).Error(0)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Acquire(ctx context.Context) (Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Session), args.Error(1)
}

type MockReporter struct {
	mock.Mock
	log *callLog
}

func (m *MockReporter) ReportFailure(ctx context.Context, c Capturer, name string) {
	if m.log != nil {
		m.log.add("report")
	}
	m.Called(ctx, c, name)
}
