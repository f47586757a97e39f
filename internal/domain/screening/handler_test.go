package screening

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ganeshcj/Optimedix/internal/platform/ai"
	"github.com/Ganeshcj/Optimedix/internal/platform/auth"
)

func sessionContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, sess auth.Session) echo.Context {
	req = req.WithContext(auth.WithSession(req.Context(), sess))
	return e.NewContext(req, rec)
}

func screenBody(t *testing.T) string {
	t.Helper()
	img := base64.StdEncoding.EncodeToString([]byte("fundus-pixels"))
	return fmt.Sprintf(`{"left_image":{"mime_type":"image/jpeg","data":"%s"}}`, img)
}

func TestHandler_Screen(t *testing.T) {
	e := echo.New()
	f := newFixture(func(context.Context, ai.Request) (*ai.Result, error) {
		return mildDRLeft(), nil
	})
	h := NewHandler(f.svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients/x/screenings", strings.NewReader(screenBody(t)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := sessionContext(e, req, rec, f.nurse)
	c.SetParamNames("id")
	c.SetParamValues(f.patientID.String())

	if err := h.Screen(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var result ScreeningResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", result.Status)
	}
}

func TestHandler_Screen_NoImages(t *testing.T) {
	e := echo.New()
	f := newFixture(func(context.Context, ai.Request) (*ai.Result, error) {
		return mildDRLeft(), nil
	})
	h := NewHandler(f.svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients/x/screenings", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := sessionContext(e, req, rec, f.nurse)
	c.SetParamNames("id")
	c.SetParamValues(f.patientID.String())

	err := h.Screen(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_Screen_AnalysisFailureIsBadGateway(t *testing.T) {
	e := echo.New()
	f := newFixture(func(context.Context, ai.Request) (*ai.Result, error) {
		return nil, &ai.AnalysisError{Reason: ai.ReasonTransport, Err: errors.New("model down")}
	})
	h := NewHandler(f.svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients/x/screenings", strings.NewReader(screenBody(t)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := sessionContext(e, req, rec, f.nurse)
	c.SetParamNames("id")
	c.SetParamValues(f.patientID.String())

	err := h.Screen(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %v", err)
	}
}

func TestHandler_ReferAndReview(t *testing.T) {
	e := echo.New()
	f := newFixture(func(context.Context, ai.Request) (*ai.Result, error) {
		return mildDRLeft(), nil
	})
	h := NewHandler(f.svc)

	result, err := f.svc.Screen(context.Background(), f.patientID, f.nurse.UserID, leftImage())
	if err != nil {
		t.Fatalf("screen: %v", err)
	}

	// Nurse refers.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/screenings/x/refer", nil)
	rec := httptest.NewRecorder()
	c := sessionContext(e, req, rec, f.nurse)
	c.SetParamNames("id")
	c.SetParamValues(result.ID.String())
	if err := h.Refer(c); err != nil {
		t.Fatalf("refer: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Doctor reviews with a prescription body.
	body := `{"diagnosis":"Early NPDR","medications":[{"name":"Metformin","dosage":"500mg","frequency":"twice daily"}]}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/screenings/x/review", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = sessionContext(e, req, rec, f.doctor)
	c.SetParamNames("id")
	c.SetParamValues(result.ID.String())
	if err := h.Review(c); err != nil {
		t.Fatalf("review: %v", err)
	}

	var reviewed ScreeningResult
	if err := json.Unmarshal(rec.Body.Bytes(), &reviewed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if reviewed.Status != StatusReviewed {
		t.Errorf("expected REVIEWED, got %s", reviewed.Status)
	}
}

func TestHandler_Refer_WrongStateConflicts(t *testing.T) {
	e := echo.New()
	f := newFixture(func(context.Context, ai.Request) (*ai.Result, error) {
		return mildDRLeft(), nil
	})
	h := NewHandler(f.svc)

	result, err := f.svc.Screen(context.Background(), f.patientID, f.nurse.UserID, leftImage())
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if _, err := f.svc.Refer(context.Background(), result.ID, f.nurse); err != nil {
		t.Fatalf("refer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/screenings/x/refer", nil)
	rec := httptest.NewRecorder()
	c := sessionContext(e, req, rec, f.nurse)
	c.SetParamNames("id")
	c.SetParamValues(result.ID.String())

	err = h.Refer(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	e := echo.New()
	f := newFixture(func(context.Context, ai.Request) (*ai.Result, error) {
		return mildDRLeft(), nil
	})
	h := NewHandler(f.svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/screenings/x", nil)
	rec := httptest.NewRecorder()
	c := sessionContext(e, req, rec, f.nurse)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := h.Get(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_List_StatusFilter(t *testing.T) {
	e := echo.New()
	f := newFixture(func(context.Context, ai.Request) (*ai.Result, error) {
		return mildDRLeft(), nil
	})
	h := NewHandler(f.svc)

	first, err := f.svc.Screen(context.Background(), f.patientID, f.nurse.UserID, leftImage())
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if _, err := f.svc.Screen(context.Background(), f.patientID, f.nurse.UserID, leftImage()); err != nil {
		t.Fatalf("screen: %v", err)
	}
	if _, err := f.svc.Refer(context.Background(), first.ID, f.nurse); err != nil {
		t.Fatalf("refer: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/screenings?status=REFERRED", nil)
	rec := httptest.NewRecorder()
	c := sessionContext(e, req, rec, f.nurse)

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp struct {
		Data  []ScreeningResult `json:"data"`
		Total int               `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 || resp.Data[0].ID != first.ID {
		t.Errorf("expected only the referred result, got %+v", resp)
	}
}
