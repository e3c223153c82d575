package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/aleister1102/filemonitor/internal/config"
	"github.com/aleister1102/filemonitor/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGlobalConfig(t *testing.T) *config.GlobalConfig {
	t.Helper()
	cfg := config.NewDefaultGlobalConfig()
	cfg.MonitorConfig.StartIndex = 0
	cfg.MonitorConfig.EndIndex = 3
	cfg.MonitorConfig.Extensions = []string{"txt"}
	cfg.MonitorConfig.DownloadDir = t.TempDir()
	cfg.LogConfig.LogDir = t.TempDir()
	return cfg
}

func TestMonitoringService_RunOnce(t *testing.T) {
	prober := newFakeProber(map[int]string{2: "txt"})
	notifier := &recordingNotifier{}
	var reported []models.RunStats

	svc, err := NewMonitoringService(ServiceOptions{
		Config:   newTestGlobalConfig(t),
		Prober:   prober,
		Notifier: notifier,
		OnReport: func(s models.RunStats) { reported = append(reported, s) },
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.NotEmpty(t, svc.RunID())

	summary, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Checked)
	assert.Equal(t, 1, summary.Downloaded)

	require.Len(t, notifier.reports, 1)
	assert.Contains(t, notifier.reports[0], "Files Found: 1")
	assert.Contains(t, notifier.reports[0], "Current Index: 3")
	require.Len(t, reported, 1)
	assert.Equal(t, int64(4), reported[0].ChecksPerformed)
	assert.Equal(t, svc.RunID(), svc.Stats().RunID)

	indices := svc.Indices()
	require.Len(t, indices, 4)
	assert.Equal(t, 2, indices[2].Index)
	assert.True(t, indices[2].Discovered)
	assert.False(t, indices[1].Discovered)
}

func TestMonitoringService_RunSendsLifecycleNotifications(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, err := NewMonitoringService(ServiceOptions{
		Config:   newTestGlobalConfig(t),
		Prober:   newFakeProber(nil),
		Notifier: notifier,
	}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool { return svc.Stats().CyclesCompleted >= 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Equal(t, 1, notifier.startups)
	assert.Equal(t, 1, notifier.shutdowns)
	assert.Empty(t, notifier.systemErr)
}

func TestMonitoringService_FatalRangeReportsSystemError(t *testing.T) {
	cfg := newTestGlobalConfig(t)
	cfg.MonitorConfig.StartIndex = 10
	cfg.MonitorConfig.EndIndex = 1
	notifier := &recordingNotifier{}

	svc, err := NewMonitoringService(ServiceOptions{
		Config:   cfg,
		Prober:   newFakeProber(nil),
		Notifier: notifier,
		LogFile:  "/var/log/file_monitor_20240101.log",
	}, zerolog.Nop())
	require.NoError(t, err)

	err = svc.Run(context.Background())
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Len(t, notifier.systemErr, 1)
	assert.Zero(t, notifier.shutdowns)
}

func TestNewMonitoringService_RequiresConfig(t *testing.T) {
	_, err := NewMonitoringService(ServiceOptions{}, zerolog.Nop())
	assert.Error(t, err)
}
