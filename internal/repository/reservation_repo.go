package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"reservationform/internal/entities"
	apperrors "reservationform/internal/errors"

	"github.com/sirupsen/logrus"
)

const maxErrorBodyBytes = 64 << 10

// ReservationRepository creates reservations on the restaurant backend over HTTP.
type ReservationRepository struct {
	client    *http.Client
	createURL string
}

func NewReservationRepository(client *http.Client, baseURL, createPath string) *ReservationRepository {
	return &ReservationRepository{
		client:    client,
		createURL: strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(createPath, "/"),
	}
}

// CreateReservation posts the draft as JSON. Only a 200 response counts as success; any other
// status comes back as an *errors.HTTPError carrying the response body.
func (r *ReservationRepository) CreateReservation(ctx context.Context, draft entities.ReservationDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("error encoding reservation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.createURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error building reservation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending reservation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return fmt.Errorf("error reading reservation response (status %d): %w", resp.StatusCode, err)
	}
	logrus.WithFields(logrus.Fields{
		"status": resp.StatusCode,
		"url":    r.createURL,
	}).Debug("backend rejected reservation")
	return apperrors.FromResponseBody(resp.StatusCode, body)
}
