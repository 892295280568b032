package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"novapos/internal/model"
)

var (
	// ErrRemotoNoConfigurado means no endpoint URL is set; the ledger runs
	// offline.
	ErrRemotoNoConfigurado = errors.New("remoto: endpoint no configurado")
	// ErrRespuestaRemota wraps non-2xx statuses and {"status":"error"} bodies.
	ErrRespuestaRemota = errors.New("remoto: respuesta de error")
)

// peticionRemota is the POST envelope the sheet endpoint dispatches on.
type peticionRemota struct {
	Action  model.Accion    `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type respuestaRemota struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RemoteClient talks to the spreadsheet-backed web endpoint: GET returns the
// full dataset, POST applies one action.
type RemoteClient struct {
	url        string
	httpClient *http.Client
}

func NewRemoteClient(url string, timeout time.Duration) *RemoteClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteClient{
		url:        strings.TrimSpace(url),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configurado is false when the URL is empty or still the setup placeholder.
func (c *RemoteClient) Configurado() bool {
	return c.url != "" && !strings.Contains(c.url, "TU_URL")
}

// FetchSnapshot downloads every collection in one request.
func (c *RemoteClient) FetchSnapshot(ctx context.Context) (*model.Snapshot, error) {
	if !c.Configurado() {
		return nil, ErrRemotoNoConfigurado
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("remoto: crear request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remoto: inalcanzable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrRespuestaRemota, resp.StatusCode)
	}

	var hojas snapshotSheets
	if err := json.NewDecoder(resp.Body).Decode(&hojas); err != nil {
		return nil, fmt.Errorf("remoto: decodificar snapshot: %w", err)
	}
	snap := hojas.modelo()
	snap.Normalizar()
	return snap, nil
}

// Push sends one action. The endpoint only accepts text/plain bodies without
// a CORS preflight, so the JSON goes out under that content type.
func (c *RemoteClient) Push(ctx context.Context, accion model.Accion, payload json.RawMessage) error {
	if !c.Configurado() {
		return ErrRemotoNoConfigurado
	}
	body, err := json.Marshal(peticionRemota{Action: accion, Payload: payload})
	if err != nil {
		return fmt.Errorf("remoto: marshal %s: %w", accion, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("remoto: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remoto: inalcanzable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("remoto: leer respuesta: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s status %d", ErrRespuestaRemota, accion, resp.StatusCode)
	}

	var r respuestaRemota
	if err := json.Unmarshal(raw, &r); err != nil {
		return fmt.Errorf("remoto: decodificar respuesta %s: %w", accion, err)
	}
	if r.Status != "success" {
		return fmt.Errorf("%w: %s: %s", ErrRespuestaRemota, accion, r.Message)
	}
	return nil
}
