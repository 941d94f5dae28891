package app

import (
	"context"
	"testing"
	"time"

	"github.com/idilsaglam/fintrack/internal/api"
	"github.com/idilsaglam/fintrack/internal/config"
	"github.com/idilsaglam/fintrack/internal/model"
	"github.com/idilsaglam/fintrack/internal/stub"
	"github.com/idilsaglam/fintrack/internal/view"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Home: t.TempDir(),
		API:  config.APIConfig{BaseURL: "http://stub.local/api", Timeout: 2 * time.Second},
		UI:   config.UIConfig{DeleteErrors: "ignore"},
	}
}

func TestNewRejectsBadPolicy(t *testing.T) {
	cfg := testConfig(t)
	cfg.UI.DeleteErrors = "explode"
	if _, err := New(cfg, nil); err == nil {
		t.Fatal("expected a policy error")
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.BaseURL = "not a url"
	if _, err := New(cfg, nil); err == nil {
		t.Fatal("expected a base url error")
	}
}

func TestTaskListAgainstStub(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := stub.New([]model.WorkItem{
		{ID: 1, Title: "Pay rent", Status: model.StatusPending},
		{ID: 2, Title: "File taxes", Status: model.StatusCompleted},
	}, stub.WithPrefix("/api"))
	a, err := New(testConfig(t), nil, api.WithDial(srv.ListenInMemory(ctx)))
	if err != nil {
		t.Fatal(err)
	}
	if a.DeletePolicy != view.DeleteErrorIgnore {
		t.Errorf("policy = %q", a.DeletePolicy)
	}

	tl := a.NewTaskList()
	defer tl.Close()

	st := tl.Refresh(ctx)
	if st.Phase != view.Populated || len(st.Items) != 2 {
		t.Fatalf("unexpected state %+v", st)
	}

	st, err = tl.Delete(ctx, 2)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(st.Items) != 1 || st.Items[0].ID != 1 {
		t.Errorf("item 2 still listed: %+v", st.Items)
	}

	srv.Inject(stub.OpList, stub.Fault{Message: "DB unavailable"})
	st = tl.Refresh(ctx)
	if st.Phase != view.Failed || st.Err != "DB unavailable" {
		t.Errorf("unexpected state %+v", st)
	}
}
