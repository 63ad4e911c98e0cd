package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ayusman/airpaint/internal/config"
	"github.com/ayusman/airpaint/internal/store"
)

// maxSettingSize bounds a PUT body.
const maxSettingSize = 64 << 10

// SettingsHandler edits the stored configuration overrides. Changes take
// effect the next time airpaint starts.
type SettingsHandler struct {
	store *store.Store
}

// NewSettingsHandler creates a new SettingsHandler with the given store.
func NewSettingsHandler(s *store.Store) *SettingsHandler {
	return &SettingsHandler{store: s}
}

// ServeHTTP routes /api/settings and /api/settings/{key}.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/settings")
	key = strings.TrimPrefix(key, "/")

	if key == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, key)
	case http.MethodPut:
		h.put(w, r, key)
	case http.MethodDelete:
		h.delete(w, r, key)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type settingResponse struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt string          `json:"updated_at,omitempty"`
}

type listSettingsResponse struct {
	// Effective is the configuration the stored overrides produce.
	Effective config.Config     `json:"effective"`
	Settings  []settingResponse `json:"settings"`
	Keys      []string          `json:"keys"`
}

// list handles GET /api/settings.
func (h *SettingsHandler) list(w http.ResponseWriter, r *http.Request) {
	stored, err := h.store.Settings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list settings")
		return
	}

	all := make(map[string]string, len(stored))
	response := listSettingsResponse{
		Settings: make([]settingResponse, 0, len(stored)),
		Keys:     config.Keys(),
	}
	for _, st := range stored {
		all[st.Key] = st.Value
		response.Settings = append(response.Settings, settingResponse{
			Key:       st.Key,
			Value:     json.RawMessage(st.Value),
			UpdatedAt: st.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	effective, err := config.Load(all)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Stored settings are invalid: "+err.Error())
		return
	}
	response.Effective = effective

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/settings/{key}. Keys without an override report the default.
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request, key string) {
	value, err := h.store.Settings().Get(key)
	if err == nil {
		writeJSON(w, http.StatusOK, settingResponse{Key: key, Value: json.RawMessage(value)})
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to get setting")
		return
	}

	def, err := defaultValue(key)
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown setting")
		return
	}
	writeJSON(w, http.StatusOK, settingResponse{Key: key, Value: def})
}

// put handles PUT /api/settings/{key}. The body is the JSON value. The
// override is stored only if the resulting configuration is valid.
func (h *SettingsHandler) put(w http.ResponseWriter, r *http.Request, key string) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSettingSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body")
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	all, err := h.store.Settings().All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read settings")
		return
	}
	all[key] = string(body)
	if _, err := config.Load(all); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			writeError(w, http.StatusNotFound, "Unknown setting")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Settings().Set(key, string(body)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store setting")
		return
	}

	writeJSON(w, http.StatusOK, settingResponse{Key: key, Value: json.RawMessage(body)})
}

// delete handles DELETE /api/settings/{key} and restores the default.
func (h *SettingsHandler) delete(w http.ResponseWriter, r *http.Request, key string) {
	err := h.store.Settings().Delete(key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Setting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete setting")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// defaultValue returns the JSON encoding of key's built-in value.
func defaultValue(key string) (json.RawMessage, error) {
	data, err := json.Marshal(config.Default())
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	v, ok := fields[key]
	if !ok {
		return nil, config.ErrUnknownKey
	}
	return v, nil
}
