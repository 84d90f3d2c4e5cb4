package server

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/math-2025/protected-geo/obfuscate"
	"github.com/math-2025/protected-geo/store"
)

type coordinateRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Key       string   `json:"key"`
	Trace     bool     `json:"trace,omitempty"`
}

func (c coordinateRequest) coordinate() (obfuscate.Coordinate, error) {
	if c.Latitude == nil || c.Longitude == nil {
		return obfuscate.Coordinate{}, errMissingCoordinate
	}
	return obfuscate.Coordinate{Lat: *c.Latitude, Lng: *c.Longitude}, nil
}

type verifyRequest struct {
	coordinateRequest
	OriginalLatitude  *float64 `json:"originalLatitude"`
	OriginalLongitude *float64 `json:"originalLongitude"`
}

type stepResponse struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Details   string  `json:"details"`
}

type coordinateResponse struct {
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Steps     []stepResponse `json:"derivationSteps,omitempty"`
}

type verifyResponse struct {
	Match     bool    `json:"match"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type messageRequest struct {
	Text   string `json:"text,omitempty"`
	Cipher string `json:"cipher,omitempty"`
}

type createDecoyRequest struct {
	coordinateRequest
	PublicName        string `json:"publicName"`
	OperationTargetID string `json:"operationTargetId"`
}

type keyRequest struct {
	Key string `json:"key"`
}

// decoyResponse is the public view of a decoy, without the original position
type decoyResponse struct {
	ID                string         `json:"id"`
	PublicName        string         `json:"publicName"`
	Latitude          float64        `json:"latitude"`
	Longitude         float64        `json:"longitude"`
	OperationTargetID string         `json:"operationTargetId"`
	Steps             []stepResponse `json:"derivationSteps"`
	CreatedAt         time.Time      `json:"createdAt"`
}

func newDecoyResponse(d *store.Decoy) decoyResponse {
	steps := make([]stepResponse, len(d.Steps))
	for i, s := range d.Steps {
		steps[i] = stepResponse(s)
	}
	return decoyResponse{
		ID:                d.ID,
		PublicName:        d.PublicName,
		Latitude:          d.Latitude,
		Longitude:         d.Longitude,
		OperationTargetID: d.OperationTargetID,
		Steps:             steps,
		CreatedAt:         d.CreatedAt,
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "available"})
}

func (s *Server) encryptCoordinates(w http.ResponseWriter, r *http.Request) {
	var req coordinateRequest
	if err := decode(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	c, err := req.coordinate()
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	enc := obfuscate.EncryptCoordinates(c.Lat, c.Lng, req.Key)
	res := coordinateResponse{Latitude: enc.Lat, Longitude: enc.Lng}
	if req.Trace {
		for _, step := range enc.Steps() {
			res.Steps = append(res.Steps, stepResponse{
				Name:      step.Name,
				Latitude:  step.Coordinate.Lat,
				Longitude: step.Coordinate.Lng,
				Details:   step.Details,
			})
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) decryptCoordinates(w http.ResponseWriter, r *http.Request) {
	var req coordinateRequest
	if err := decode(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	c, err := req.coordinate()
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	lat, lng := obfuscate.DecryptCoordinates(c.Lat, c.Lng, req.Key)
	writeJSON(w, http.StatusOK, coordinateResponse{Latitude: lat, Longitude: lng})
}

// verifyCoordinates never tells a wrong key apart from any other mismatch
func (s *Server) verifyCoordinates(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decode(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	c, err := req.coordinate()
	if err != nil || req.OriginalLatitude == nil || req.OriginalLongitude == nil {
		badRequest(w, "latitude, longitude, originalLatitude and originalLongitude are required")
		return
	}
	lat, lng := obfuscate.DecryptCoordinates(c.Lat, c.Lng, req.Key)
	decrypted := obfuscate.Coordinate{Lat: lat, Lng: lng}
	original := obfuscate.Coordinate{Lat: *req.OriginalLatitude, Lng: *req.OriginalLongitude}
	writeJSON(w, http.StatusOK, verifyResponse{
		Match:     obfuscate.Matches(decrypted, original, s.tolerance),
		Latitude:  lat,
		Longitude: lng,
	})
}

func (s *Server) encryptMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decode(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, messageRequest{Cipher: obfuscate.EncryptMessage(req.Text)})
}

// decryptMessage responds with the sentinel text when the cipher cannot be decrypted
func (s *Server) decryptMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decode(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": obfuscate.DecryptMessage(req.Cipher)})
}

func (s *Server) createDecoy(w http.ResponseWriter, r *http.Request) {
	var req createDecoyRequest
	if err := decode(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	c, err := req.coordinate()
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	key, err := obfuscate.NewKey(req.Key)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	name := req.PublicName
	if name == "" {
		existing, err := s.store.ListByTarget(r.Context(), req.OperationTargetID)
		if err != nil {
			s.log.Error("failed to list decoys", "target", req.OperationTargetID, "err", err)
			internalError(w)
			return
		}
		name = store.PublicName(len(existing))
	}

	d, err := store.NewDecoy(name, req.OperationTargetID, c, key)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if !isFinite(d) {
		unprocessable(w, errNonFinite.Error())
		return
	}
	if err := s.store.Save(r.Context(), d); err != nil {
		s.log.Error("failed to save the decoy", "id", d.ID, "err", err)
		internalError(w)
		return
	}
	s.log.Info("decoy created", "id", d.ID, "target", d.OperationTargetID)
	writeJSON(w, http.StatusCreated, newDecoyResponse(d))
}

func (s *Server) getDecoy(w http.ResponseWriter, r *http.Request) {
	d, ok := s.loadDecoy(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newDecoyResponse(d))
}

func (s *Server) verifyDecoy(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := decode(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	d, ok := s.loadDecoy(w, r)
	if !ok {
		return
	}

	res := verifyResponse{}
	if key, err := obfuscate.NewKey(req.Key); err == nil {
		var decrypted obfuscate.Coordinate
		decrypted, res.Match = d.Verify(key, s.tolerance)
		if res.Match {
			res.Latitude, res.Longitude = decrypted.Lat, decrypted.Lng
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) listDecoys(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "id")
	decoys, err := s.store.ListByTarget(r.Context(), target)
	if err != nil {
		s.log.Error("failed to list decoys", "target", target, "err", err)
		internalError(w)
		return
	}
	res := make([]decoyResponse, len(decoys))
	for i, d := range decoys {
		res[i] = newDecoyResponse(d)
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) deleteDecoy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		notFound(w, "decoy not found")
		return
	}
	if err != nil {
		s.log.Error("failed to delete the decoy", "id", id, "err", err)
		internalError(w)
		return
	}
	s.log.Info("decoy deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteTargetDecoys(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "id")
	removed, err := s.store.DeleteByTarget(r.Context(), target)
	if err != nil {
		s.log.Error("failed to delete the decoys", "target", target, "err", err)
		internalError(w)
		return
	}
	s.log.Info("decoys deleted", "target", target, "count", removed)
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Server) loadDecoy(w http.ResponseWriter, r *http.Request) (*store.Decoy, bool) {
	id := chi.URLParam(r, "id")
	d, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		notFound(w, "decoy not found")
		return nil, false
	}
	if err != nil {
		s.log.Error("failed to load the decoy", "id", id, "err", err)
		internalError(w)
		return nil, false
	}
	return d, true
}

// isFinite reports whether every coordinate of the decoy, including the derivation steps, can be stored
func isFinite(d *store.Decoy) bool {
	values := []float64{d.Latitude, d.Longitude}
	for _, step := range d.Steps {
		values = append(values, step.Latitude, step.Longitude)
	}
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}
