package service

import (
	"github.com/MKhiriev/go-health-keeper/internal/adapter"
	"github.com/MKhiriev/go-health-keeper/internal/config"
	"github.com/MKhiriev/go-health-keeper/internal/logger"
	"github.com/MKhiriev/go-health-keeper/internal/store"
	"github.com/MKhiriev/go-health-keeper/internal/validators"
)

type Services struct {
	RecordsService RecordsService
	PendingScanner PendingScanner
	Uploader       Uploader
	Reconciler     Reconciler
	Orchestrator   SyncOrchestrator
	SyncJob        SyncJob
}

func NewServices(storages *store.ClientStorages, remote adapter.RemoteAdapter, syncCfg config.ClientSync, logger *logger.Logger) *Services {
	recordsSvc := NewRecordsService(storages.RecordRepository, remote, validators.NewRecordValidator())
	scanner := NewPendingScanner(storages.RecordRepository)
	uploader := NewUploader(storages.RecordRepository, remote, syncCfg.UploadConcurrency, logger)
	reconciler := NewReconciler(storages.RecordRepository, logger)
	orchestrator := NewSyncOrchestrator(storages.MetaRepository, remote, scanner, uploader, reconciler, syncCfg, logger)

	return &Services{
		RecordsService: recordsSvc,
		PendingScanner: scanner,
		Uploader:       uploader,
		Reconciler:     reconciler,
		Orchestrator:   orchestrator,
		SyncJob:        NewSyncJob(orchestrator),
	}
}
