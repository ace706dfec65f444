package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"unalone/internal/domain"
)

func TestPrivacyService_ConsentNotRecorded(t *testing.T) {
	svc := NewPrivacyService(&mockPrivacyAPI{}, &mockStateRepository{}, &mockPushChannel{}, &mockNotifier{}, testLogger(), testTimeout)

	_, ok, err := svc.Consent(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no recorded consent")
	}
}

func TestPrivacyService_SaveConsentForcesNecessaryAndMirrors(t *testing.T) {
	api := &mockPrivacyAPI{}
	state := &mockStateRepository{}
	svc := NewPrivacyService(api, state, &mockPushChannel{}, &mockNotifier{}, testLogger(), testTimeout)

	err := svc.SaveConsent(context.Background(), domain.ConsentPreferences{Necessary: false, Analytics: true})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.savedConsent) != 1 {
		t.Fatalf("expected one local save, got %d", len(state.savedConsent))
	}
	saved := state.savedConsent[0]
	if !saved.Necessary || !saved.Analytics {
		t.Errorf("expected necessary forced on, got %+v", saved)
	}
	if saved.UpdatedAt == "" {
		t.Error("expected UpdatedAt stamped")
	}
	if len(api.mirrored) != 1 {
		t.Errorf("expected one backend mirror, got %d", len(api.mirrored))
	}
}

func TestPrivacyService_MirrorFailureDoesNotFailSave(t *testing.T) {
	api := &mockPrivacyAPI{mirrorErr: errors.New("backend down")}
	state := &mockStateRepository{}
	svc := NewPrivacyService(api, state, &mockPushChannel{}, &mockNotifier{}, testLogger(), testTimeout)

	err := svc.SaveConsent(context.Background(), domain.AcceptAllConsent())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.savedConsent) != 1 {
		t.Error("expected local save to stick")
	}
}

func TestPrivacyService_AcceptAllAndDeclineOptional(t *testing.T) {
	state := &mockStateRepository{}
	svc := NewPrivacyService(&mockPrivacyAPI{}, state, &mockPushChannel{}, &mockNotifier{}, testLogger(), testTimeout)

	if err := svc.AcceptAll(context.Background()); err != nil {
		t.Fatalf("accept all: %v", err)
	}
	if err := svc.DeclineOptional(context.Background()); err != nil {
		t.Fatalf("decline optional: %v", err)
	}

	if len(state.savedConsent) != 2 {
		t.Fatalf("expected two saves, got %d", len(state.savedConsent))
	}
	all, onlyNecessary := state.savedConsent[0], state.savedConsent[1]
	if !all.Functional || !all.Analytics || !all.Marketing {
		t.Errorf("expected everything enabled, got %+v", all)
	}
	if !onlyNecessary.Necessary || onlyNecessary.Functional || onlyNecessary.Analytics || onlyNecessary.Marketing {
		t.Errorf("expected only necessary enabled, got %+v", onlyNecessary)
	}
}

func TestPrivacyService_ExportDataWritesFile(t *testing.T) {
	blob, _ := json.Marshal(map[string]string{"user": "u1"})
	api := &mockPrivacyAPI{blob: blob}
	notifier := &mockNotifier{}
	svc := NewPrivacyService(api, &mockStateRepository{}, &mockPushChannel{}, notifier, testLogger(), testTimeout)

	dir := t.TempDir()
	path, err := svc.ExportData(context.Background(), dir)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("expected file in %s, got %s", dir, path)
	}
	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(written) != string(blob) {
		t.Errorf("expected exported blob written verbatim")
	}
	if len(notifier.notices) != 1 {
		t.Errorf("expected a success notice, got %v", notifier.notices)
	}
}

func TestPrivacyService_DeleteAccountRequiresPassword(t *testing.T) {
	api := &mockPrivacyAPI{}
	svc := NewPrivacyService(api, &mockStateRepository{}, &mockPushChannel{}, &mockNotifier{}, testLogger(), testTimeout)

	err := svc.DeleteAccount(context.Background(), "")

	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if len(api.deletions) != 0 {
		t.Error("expected no delete request without a password")
	}
}

func TestPrivacyService_DeleteAccountClearsSession(t *testing.T) {
	api := &mockPrivacyAPI{}
	state := &mockStateRepository{token: "tok"}
	channel := &mockPushChannel{}
	svc := NewPrivacyService(api, state, channel, &mockNotifier{}, testLogger(), testTimeout)

	if err := svc.DeleteAccount(context.Background(), "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(api.deletions) != 1 || api.deletions[0] != "secret" {
		t.Errorf("expected delete request with password, got %v", api.deletions)
	}
	if state.clearCalls != 1 {
		t.Errorf("expected token cleared, got %d clears", state.clearCalls)
	}
	if channel.disconnectCalls != 1 {
		t.Errorf("expected push channel disconnected, got %d", channel.disconnectCalls)
	}
}

func TestPrivacyService_DeleteAccountBackendFailure(t *testing.T) {
	api := &mockPrivacyAPI{err: &domain.APIError{Status: 401, Message: "wrong password"}}
	state := &mockStateRepository{token: "tok"}
	channel := &mockPushChannel{}
	svc := NewPrivacyService(api, state, channel, &mockNotifier{}, testLogger(), testTimeout)

	err := svc.DeleteAccount(context.Background(), "wrong")

	if err == nil {
		t.Fatal("expected an error")
	}
	if state.clearCalls != 0 {
		t.Error("expected token kept on failure")
	}
	if channel.disconnectCalls != 0 {
		t.Error("expected push channel kept on failure")
	}
}
