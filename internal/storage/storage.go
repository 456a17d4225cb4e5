// /internal/storage/storage.go
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/keshon/datastore"

	"jukebox/internal/music/admission"
)

const commandHistoryLimit int = 20

// Defaults are the policy values used when a guild has no override stored.
type Defaults struct {
	Volume          float64
	MaxSongDuration time.Duration
	MaxSongsPerUser int
	OperatorID      string
}

type Storage struct {
	ds       *datastore.DataStore
	defaults Defaults
}

type CommandHistoryRecord struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Param       string    `json:"param"`
	Datetime    time.Time `json:"datetime"`
}

// Record is the per-guild persisted state. Policy fields are pointers so a
// stored zero is distinguishable from "no override".
type Record struct {
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history"`
	DefaultVolume       *float64               `json:"default_volume,omitempty"`
	MaxSongMinutes      *int                   `json:"max_song_minutes,omitempty"`
	MaxSongsPerUser     *int                   `json:"max_songs_per_user,omitempty"`
}

func New(filePath string, defaults Defaults) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds, defaults: defaults}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// Helper function to get or create a Record for a guild
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Get(guildID)
	if !exists {
		newRecord := &Record{
			CommandsHistoryList: []CommandHistoryRecord{},
		}
		s.ds.Add(guildID, newRecord)
		return newRecord, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var record Record
	err = json.Unmarshal(jsonData, &record)
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling to *Record: %w", err)
	}

	if len(record.CommandsHistoryList) > commandHistoryLimit {
		record.CommandsHistoryList = record.CommandsHistoryList[len(record.CommandsHistoryList)-commandHistoryLimit:]
	}

	return &record, nil
}

// MusicPolicy returns the guild's admission policy and default volume,
// falling back to process-wide defaults where no override is stored.
func (s *Storage) MusicPolicy(guildID string) (admission.Policy, float64) {
	policy := admission.Policy{
		MaxSongDuration: s.defaults.MaxSongDuration,
		MaxSongsPerUser: s.defaults.MaxSongsPerUser,
		OperatorID:      s.defaults.OperatorID,
	}
	volume := s.defaults.Volume

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return policy, volume
	}
	if record.MaxSongMinutes != nil {
		policy.MaxSongDuration = time.Duration(*record.MaxSongMinutes) * time.Minute
	}
	if record.MaxSongsPerUser != nil {
		policy.MaxSongsPerUser = *record.MaxSongsPerUser
	}
	if record.DefaultVolume != nil {
		volume = *record.DefaultVolume
	}
	return policy, volume
}

// SetDefaultVolume stores the guild's preferred volume level.
func (s *Storage) SetDefaultVolume(guildID string, volume float64) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.DefaultVolume = &volume
	s.ds.Add(guildID, record)
	return nil
}

// SetMaxSongMinutes stores the guild's song length cap in minutes.
func (s *Storage) SetMaxSongMinutes(guildID string, minutes int) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.MaxSongMinutes = &minutes
	s.ds.Add(guildID, record)
	return nil
}

// SetMaxSongsPerUser stores the guild's per-user queue quota.
func (s *Storage) SetMaxSongsPerUser(guildID string, max int) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.MaxSongsPerUser = &max
	s.ds.Add(guildID, record)
	return nil
}

// AppendCommandToHistory appends a command history record for a guild
func (s *Storage) AppendCommandToHistory(guildID string, command CommandHistoryRecord) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistoryList = append(record.CommandsHistoryList, command)
	s.ds.Add(guildID, record)
	return nil
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}

	return record.CommandsHistoryList, nil
}
