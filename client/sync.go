package client

import (
	"context"
	"errors"
	"fmt"

	"travel-planner-server/itinerary"
	"travel-planner-server/models"

	"github.com/rs/zerolog/log"
)

// BackupStore is the local side of synchronisation.
type BackupStore interface {
	SaveBackup(plan itinerary.Plan) error
	LoadBackup() (itinerary.Plan, bool, error)
	ClearBackup() error
	LoadPlan() (itinerary.Plan, error)
}

// Syncer reconciles the working plan with the server, falling back to the
// local backup slot whenever the server cannot take the write.
type Syncer struct {
	Client *Client
	Local  BackupStore
}

func NewSyncer(c *Client, local BackupStore) *Syncer {
	return &Syncer{Client: c, Local: local}
}

// SaveResult describes where an AutoSave ended up.
type SaveResult struct {
	// RemoteID is set when the server created a new plan; the caller should
	// attach it to the working plan so later saves update instead.
	RemoteID string
	// Remote is false when the plan only reached the backup slot.
	Remote bool
	// Err is the server-side failure that caused a fallback, if any.
	Err error
}

// AutoSave pushes plan to the server when a session is active and otherwise
// writes it to the backup slot. A failed push also lands in the backup slot.
// The returned error is non-nil only when the backup write itself failed.
func (s *Syncer) AutoSave(ctx context.Context, plan itinerary.Plan) (SaveResult, error) {
	if !s.Client.Authenticated() {
		return SaveResult{}, s.backup(plan)
	}

	var (
		res SaveResult
		err error
	)
	if plan.ID != "" {
		_, err = s.Client.UpdatePlan(ctx, plan.ID, UpdateInput(plan))
	} else {
		var created *models.TravelPlan
		created, err = s.Client.CreatePlan(ctx, CreateInput(plan))
		if err == nil {
			res.RemoteID = created.ID
		}
	}
	if err == nil {
		res.Remote = true
		return res, nil
	}

	log.Warn().Err(err).Str("pkg", "client").Str("plan", plan.ID).Msg("remote save failed, keeping local backup")
	res.Err = err
	return res, s.backup(plan)
}

func (s *Syncer) backup(plan itinerary.Plan) error {
	if err := s.Local.SaveBackup(plan); err != nil {
		return fmt.Errorf("failed to write local backup: %w", err)
	}
	return nil
}

// SyncLocalData migrates the backup slot to the server after login. It makes
// at most one create call. The slot is cleared once the server has accepted
// the create, even when the new id cannot be read back; network and HTTP
// failures leave it in place for the next attempt. It returns the id of the
// created plan when one was captured.
func (s *Syncer) SyncLocalData(ctx context.Context) (string, error) {
	if !s.Client.Authenticated() {
		return "", ErrNotLoggedIn
	}
	backup, ok, err := s.Local.LoadBackup()
	if err != nil {
		return "", fmt.Errorf("failed to read local backup: %w", err)
	}
	if !ok {
		return "", nil
	}

	created, err := s.Client.CreatePlan(ctx, CreateInput(backup))
	if err != nil && !acceptedByServer(err) {
		log.Warn().Err(err).Str("pkg", "client").Msg("local backup not synced")
		return "", err
	}
	if clearErr := s.Local.ClearBackup(); clearErr != nil {
		return "", fmt.Errorf("failed to clear local backup: %w", clearErr)
	}
	if err != nil {
		log.Warn().Err(err).Str("pkg", "client").Msg("backup synced but created plan could not be read")
		return "", nil
	}
	log.Info().Str("pkg", "client").Str("plan", created.ID).Msg("local backup synced")
	return created.ID, nil
}

// acceptedByServer is true when the request got a 2xx but its body could not
// be decoded.
func acceptedByServer(err error) bool {
	return errors.Is(err, errUndecodable)
}

// LoadLatest returns the caller's most recently updated plan from the server,
// or the local working plan when there is none or the server cannot be
// reached.
func (s *Syncer) LoadLatest(ctx context.Context) (itinerary.Plan, error) {
	if s.Client.Authenticated() {
		list, err := s.Client.ListPlans(ctx, ListOptions{Page: 1, Limit: 1})
		if err == nil && len(list.TravelPlans) > 0 {
			return FromTravelPlan(list.TravelPlans[0]), nil
		}
		if err != nil {
			log.Warn().Err(err).Str("pkg", "client").Msg("loading plans from server failed, using local copy")
		}
	}
	return s.Local.LoadPlan()
}
