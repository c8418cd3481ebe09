package features

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// featureRecord is the gorm model backing the SQLite feature index.
// It mirrors Features so the index can hand back manifest entries.
type featureRecord struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	RecordingID string `gorm:"index:idx_recording_channel"`
	ChannelID   int    `gorm:"index:idx_recording_channel"`
	Start       float64
	Duration    float64
	Type        string
	NumFrames   int
	NumFeatures int
	FrameLength float64
	FrameShift  float64
	StorageType string
	StoragePath string
}

func (featureRecord) TableName() string {
	return "features"
}

func (r *featureRecord) toFeatures() *Features {
	return &Features{
		RecordingID: r.RecordingID,
		ChannelID:   r.ChannelID,
		Start:       r.Start,
		Duration:    r.Duration,
		Type:        r.Type,
		NumFrames:   r.NumFrames,
		NumFeatures: r.NumFeatures,
		FrameLength: r.FrameLength,
		FrameShift:  r.FrameShift,
		StorageType: r.StorageType,
		StoragePath: r.StoragePath,
	}
}

// Index is a SQLite-backed feature lookup for corpora too large to
// hold as a flat manifest in memory.
type Index struct {
	db *gorm.DB
}

var _ Lookup = (*Index)(nil)

// OpenIndex opens a feature index database, creating the schema if
// needed.
func OpenIndex(path string) (*Index, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening feature index: %w", err)
	}
	if err := db.AutoMigrate(&featureRecord{}); err != nil {
		return nil, fmt.Errorf("migrating feature index: %w", err)
	}
	return &Index{db: db}, nil
}

// Put stores manifest entries in the index.
func (ix *Index) Put(fs ...*Features) error {
	if len(fs) == 0 {
		return nil
	}
	records := make([]featureRecord, 0, len(fs))
	for _, f := range fs {
		records = append(records, featureRecord{
			RecordingID: f.RecordingID,
			ChannelID:   f.ChannelID,
			Start:       f.Start,
			Duration:    f.Duration,
			Type:        f.Type,
			NumFrames:   f.NumFrames,
			NumFeatures: f.NumFeatures,
			FrameLength: f.FrameLength,
			FrameShift:  f.FrameShift,
			StorageType: f.StorageType,
			StoragePath: f.StoragePath,
		})
	}
	if err := ix.db.CreateInBatches(records, 100).Error; err != nil {
		return fmt.Errorf("storing feature records: %w", err)
	}
	return nil
}

// Find implements Lookup with the same coverage contract as Set.Find.
func (ix *Index) Find(recordingID string, channelID int, start, duration float64) (*Features, error) {
	var rec featureRecord
	err := ix.db.
		Where("recording_id = ? AND channel_id = ?", recordingID, channelID).
		Where("start <= ? AND start + duration >= ?", start+coverageTolerance, start+duration-coverageTolerance).
		Order("id").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("no features cover %s channel %d window [%.3f, %.3f): %w",
			recordingID, channelID, start, start+duration, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying feature index: %w", err)
	}
	return rec.toFeatures(), nil
}

// All returns every stored entry in insertion order.
func (ix *Index) All() ([]*Features, error) {
	var records []featureRecord
	if err := ix.db.Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("listing feature index: %w", err)
	}
	out := make([]*Features, 0, len(records))
	for i := range records {
		out = append(out, records[i].toFeatures())
	}
	return out, nil
}

// Close releases the underlying database handle.
func (ix *Index) Close() error {
	sqlDB, err := ix.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
