package webhook_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/runsight/runsight/internal/http/handler/webhook"
	"github.com/runsight/runsight/internal/model"
	"github.com/runsight/runsight/internal/service"
)

type fakeIngestService struct {
	ingestFn func(ctx context.Context, params service.IngestParams) (*service.IngestResult, error)

	calls          int
	capturedParams service.IngestParams
}

func (f *fakeIngestService) Ingest(ctx context.Context, params service.IngestParams) (*service.IngestResult, error) {
	f.calls++
	f.capturedParams = params
	if f.ingestFn != nil {
		return f.ingestFn(ctx, params)
	}
	return &service.IngestResult{
		Event: &model.Event{
			ID:         12345,
			EventType:  params.EventType,
			ReceivedAt: time.Now().UTC(),
		},
		Position: 0,
	}, nil
}

var _ = Describe("GitHubWebhookHandler", func() {
	var (
		router *gin.Engine
		ingest *fakeIngestService
		buf    *bytes.Buffer
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		buf = &bytes.Buffer{}
		slog.SetDefault(slog.New(slog.NewJSONHandler(buf, nil)))

		ingest = &fakeIngestService{}
		h := webhook.NewGitHubWebhookHandler(ingest)
		router.POST("/webhook/github", h.HandleEvent)
	})

	It("accepts a delivery and acknowledges it", func() {
		body := map[string]interface{}{
			"action": "completed",
			"workflow_run": map[string]interface{}{
				"name":       "CI",
				"conclusion": "success",
			},
		}
		payload, _ := json.Marshal(body)

		req := httptest.NewRequest(http.MethodPost, "/webhook/github", bytes.NewBuffer(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-GitHub-Event", "workflow_run")
		req.Header.Set("X-GitHub-Delivery", "d-77aa01")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"status":"received"`))

		Expect(ingest.calls).To(Equal(1))
		Expect(ingest.capturedParams.EventType).To(Equal("workflow_run"))
		Expect(ingest.capturedParams.DeliveryID).To(Equal("d-77aa01"))
		Expect(ingest.capturedParams.Body).To(Equal(payload))

		logStr := buf.String()
		Expect(logStr).To(ContainSubstring("github webhook processed"))
		Expect(logStr).To(ContainSubstring(`"event_id":12345`))
	})

	It("forwards an empty event type for the service to default", func() {
		req := httptest.NewRequest(http.MethodPost, "/webhook/github", bytes.NewBufferString(`{"zen":"Design for failure."}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(ingest.capturedParams.EventType).To(BeEmpty())
		Expect(ingest.capturedParams.DeliveryID).To(BeEmpty())
	})

	It("rejects a payload the service reports as invalid", func() {
		ingest.ingestFn = func(ctx context.Context, params service.IngestParams) (*service.IngestResult, error) {
			return nil, fmt.Errorf("%w: json: cannot unmarshal array", service.ErrInvalidPayload)
		}

		req := httptest.NewRequest(http.MethodPost, "/webhook/github", bytes.NewBufferString(`[1,2,3]`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("payload must be a JSON object"))
		Expect(buf.String()).To(ContainSubstring("webhook payload rejected"))
	})

	It("returns 500 when the event cannot be stored", func() {
		ingest.ingestFn = func(ctx context.Context, params service.IngestParams) (*service.IngestResult, error) {
			return nil, errors.New("appending event: disk full")
		}

		req := httptest.NewRequest(http.MethodPost, "/webhook/github", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(ContainSubstring("failed to store event"))
		Expect(buf.String()).To(ContainSubstring("failed to store webhook event"))
	})
})
