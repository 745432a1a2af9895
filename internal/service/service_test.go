package service

import (
	"context"
	"testing"
	"time"

	"cocodry/internal/models"
	"cocodry/internal/repository"
)

func newTestService(t *testing.T, be Backend, repos *repository.Repository, interval time.Duration) (*Service, *fakePlayer) {
	t.Helper()
	p := &fakePlayer{}
	svc := NewService(Config{
		PollInterval:          interval,
		CallTimeout:           time.Second,
		OverheatC:             35,
		CountdownSeconds:      10,
		DefaultTargetMoisture: 12,
		SoundEnabled:          true,
		JWTSecret:             "test-secret",
	}, Deps{Repos: repos, Backend: be, Player: p})
	t.Cleanup(svc.Close)
	return svc, p
}

func TestService_OverheatSoundsAlarmAndAcknowledges(t *testing.T) {
	be := &fakeBackend{readings: []models.SensorReading{reading(24, 37)}}
	repos := repository.NewMemoryRepository()
	// one tick only: a later hot reading would raise the alert again
	svc, p := newTestService(t, be, repos, time.Hour)
	ctx := context.Background()

	alerts, cancel := svc.Subscribe()
	defer cancel()
	if first := <-alerts; first.Active {
		t.Fatalf("initial alert should be inactive")
	}

	if _, err := svc.Start(ctx, testOperator, ptr(25)); err != nil {
		t.Fatal(err)
	}
	select {
	case a := <-alerts:
		if !a.Active || a.TemperatureC != 37 {
			t.Fatalf("unexpected alert %+v", a)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no alert pushed")
	}
	waitFor(t, "siren on", func() bool { return svc.Alarm.State().Playing })

	if !svc.Acknowledge() {
		t.Fatalf("acknowledge should dismiss the alert")
	}
	if st := svc.Alarm.State(); st.OverheatActive || st.Playing {
		t.Fatalf("alarm still on after acknowledge: %+v", st)
	}
	if plays, _ := p.counts(); plays != 1 {
		t.Fatalf("plays = %d", plays)
	}

	var events []models.BatchEvent
	waitFor(t, "overheat journaled", func() bool {
		var err error
		events, err = svc.List(ctx, LogFilter{Type: models.EventOverheat})
		return err == nil && len(events) == 1
	})
	if events[0].BatchID != "B1" {
		t.Fatalf("journal overheat events = %+v", events)
	}
}

func TestService_RecoverResumesBatch(t *testing.T) {
	repos := repository.NewMemoryRepository()
	ctx := context.Background()

	first, _ := newTestService(t, &fakeBackend{}, repos, 5*time.Millisecond)
	started, err := first.Start(ctx, testOperator, ptr(25))
	if err != nil {
		t.Fatal(err)
	}
	first.Close()

	second, _ := newTestService(t, &fakeBackend{}, repos, 5*time.Millisecond)
	got, ok := second.Recover(ctx)
	if !ok || got.BatchID != started.BatchID {
		t.Fatalf("recovered %+v (ok=%v)", got, ok)
	}
	waitFor(t, "telemetry after recovery", func() bool { return second.Latest().BatchID == started.BatchID })
}

func TestService_MuteSilencesAlarm(t *testing.T) {
	be := &fakeBackend{hazard: models.HazardSignal{BlackDetected: true}}
	svc, _ := newTestService(t, be, repository.NewMemoryRepository(), 5*time.Millisecond)

	if _, err := svc.Start(context.Background(), testOperator, ptr(25)); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "siren on", func() bool { return svc.Alarm.State().Playing })
	if st := svc.SetEnabled(false); st.Playing || !st.HazardActive {
		t.Fatalf("mute should stop the siren but keep the hazard: %+v", st)
	}
	if st := svc.SetEnabled(true); !st.Playing {
		t.Fatalf("unmute with an active hazard should resume: %+v", st)
	}
}

func TestService_IdleWatchSilencesAfterStop(t *testing.T) {
	be := &fakeBackend{readings: []models.SensorReading{reading(24, 36), reading(24, 31)}}
	svc, p := newTestService(t, be, repository.NewMemoryRepository(), time.Hour)
	ctx := context.Background()

	if _, err := svc.Start(ctx, testOperator, ptr(25)); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "siren on", func() bool { return svc.Alarm.State().Playing })
	if _, err := svc.Stop(ctx, nil); err != nil {
		t.Fatal(err)
	}

	svc.watch.check(ctx)

	if svc.Alert().Active || svc.Alarm.State().Playing {
		t.Fatalf("alert %+v alarm %+v after cool-down", svc.Alert(), svc.Alarm.State())
	}
	if _, stops := p.counts(); stops != 1 {
		t.Fatalf("stops = %d", stops)
	}
}
