// /internal/storage/storage.go
package storage

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"mimic/datastore"
)

const (
	modelKeyPrefix = "model_"
	guildKeyPrefix = "guild_"

	commandHistoryLimit int = 20
)

type Storage struct {
	ds *datastore.DataStore
}

type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	GuildID   string    `json:"guild_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Param     string    `json:"param"`
	Datetime  time.Time `json:"datetime"`
}

type Record struct {
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// ModelBytes returns the persisted model snapshot for a user, if any.
// Values written in this process are raw bytes; values reloaded from the
// JSON file come back base64-encoded. Unreadable values count as absent.
func (s *Storage) ModelBytes(userID string) ([]byte, bool) {
	value, exists := s.ds.Get(modelKeyPrefix + userID)
	if !exists {
		return nil, false
	}

	switch v := value.(type) {
	case []byte:
		return v, true
	case string:
		data, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, false
		}
		return data, true
	default:
		return nil, false
	}
}

// SaveModel stores the encoded model snapshot under the user's key. The
// full snapshot overwrite makes writes idempotent.
func (s *Storage) SaveModel(userID string, data []byte) error {
	s.ds.Add(modelKeyPrefix+userID, data)
	return nil
}

// ModelUserIDs lists the user IDs that have a persisted model.
func (s *Storage) ModelUserIDs() []string {
	var ids []string
	for _, key := range s.ds.Keys() {
		if len(key) > len(modelKeyPrefix) && key[:len(modelKeyPrefix)] == modelKeyPrefix {
			ids = append(ids, key[len(modelKeyPrefix):])
		}
	}
	return ids
}

// Helper function to get or create a Record for a guild
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Get(guildKeyPrefix + guildID)
	if !exists {
		newRecord := &Record{
			CommandsHistoryList: []CommandHistoryRecord{},
		}
		s.ds.Add(guildKeyPrefix+guildID, newRecord)
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

// AppendCommandToHistory appends a command history record for a guild
func (s *Storage) AppendCommandToHistory(guildID string, command CommandHistoryRecord) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistoryList = append(record.CommandsHistoryList, command)
	s.ds.Add(guildKeyPrefix+guildID, record)
	return nil
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}

	return record.CommandsHistoryList, nil
}
