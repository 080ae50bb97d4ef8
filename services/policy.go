package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/opengrove/commune-api/models"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Safe defaults used when no settings row exists, or when individual
// settings are malformed, or when the configuration cannot be read at
// all and no previous snapshot is available
const (
	DefaultViolationWindowHours = 24
	DefaultViolationThreshold   = 3
	DefaultAutoSuspendHours     = 24
)

// DefaultPolicyTTL is how long a cached policy snapshot is served
// before the next read refreshes it from the database
const DefaultPolicyTTL = 5 * time.Minute

// PolicyConfig is an immutable snapshot of the moderation
// configuration. Consumers always see a complete snapshot; the fields
// are never mutated after the snapshot is built.
type PolicyConfig struct {
	BlockedWords         []string
	ProhibitedWords      []string
	BlockedDomains       []string
	ViolationWindowHours int
	ViolationThreshold   int
	AutoSuspendHours     int
}

// DefaultPolicyConfig returns the configuration used when nothing can
// be read from the database: no filtering, conservative thresholds
func DefaultPolicyConfig() *PolicyConfig {
	return &PolicyConfig{
		ViolationWindowHours: DefaultViolationWindowHours,
		ViolationThreshold:   DefaultViolationThreshold,
		AutoSuspendHours:     DefaultAutoSuspendHours,
	}
}

// PolicyService owns the moderation configuration: the word and domain
// lists and the escalation thresholds. Reads are served from a cached
// snapshot with a TTL; administrator writes go through this service so
// the cache can be invalidated synchronously.
type PolicyService struct {
	DB     *gorm.DB
	TTL    time.Duration
	Logger *slog.Logger

	mu        sync.RWMutex
	snapshot  *PolicyConfig
	refreshed time.Time
	group     singleflight.Group
}

func (s *PolicyService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *PolicyService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultPolicyTTL
}

// GetConfig returns the current policy configuration. It never fails:
// if the backing read fails the last-known-good snapshot is returned,
// and if there has never been a successful read the safe defaults are
// used so content submission degrades to "no filtering" rather than
// crashing.
func (s *PolicyService) GetConfig() *PolicyConfig {

	// Serve from the cache while the snapshot is fresh
	s.mu.RLock()
	if s.snapshot != nil && time.Since(s.refreshed) < s.ttl() {
		cfg := s.snapshot
		s.mu.RUnlock()
		return cfg
	}
	s.mu.RUnlock()

	// Refresh through singleflight so concurrent cache misses trigger
	// at most one backing read, with every waiter sharing the result
	v, err, _ := s.group.Do("policy", func() (interface{}, error) {
		cfg, err := s.load()
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.snapshot = cfg
		s.refreshed = time.Now()
		s.mu.Unlock()
		return cfg, nil
	})
	if err != nil {
		s.logger().Error("policy refresh failed", "err", err)

		// Fall back to the last-known-good snapshot if there is one
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.snapshot != nil {
			return s.snapshot
		}
		return DefaultPolicyConfig()
	}
	return v.(*PolicyConfig)

}

// Invalidate drops the cached snapshot so the next read reflects the
// latest configuration. Called synchronously after every administrator
// write.
func (s *PolicyService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The snapshot itself stays in place as the last-known-good copy;
	// only the freshness marker is reset
	s.refreshed = time.Time{}
}

// load reads the full configuration from the database and builds a
// fresh snapshot. Malformed entries are dropped here, at the boundary,
// so the scanner never has to deal with them.
func (s *PolicyService) load() (*PolicyConfig, error) {

	cfg := DefaultPolicyConfig()

	// Load the word lists
	var words []*models.PolicyWord
	err := s.DB.
		Where("deleted_date IS NULL").
		Find(&words).
		Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPolicyUnavailable, err)
	}
	for _, w := range words {
		word := strings.TrimSpace(w.Word)
		if len(word) == 0 {
			s.logger().Warn("dropping blank policy word", "id", w.ID)
			continue
		}
		switch w.Kind {
		case models.WordKindBlocked:
			cfg.BlockedWords = append(cfg.BlockedWords, word)
		case models.WordKindProhibited:
			cfg.ProhibitedWords = append(cfg.ProhibitedWords, word)
		default:
			s.logger().Warn("dropping policy word with unknown kind", "id", w.ID, "kind", w.Kind)
		}
	}

	// Load the domain list
	var domains []*models.PolicyDomain
	err = s.DB.
		Where("deleted_date IS NULL").
		Find(&domains).
		Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPolicyUnavailable, err)
	}
	for _, d := range domains {
		domain := strings.ToLower(strings.Trim(strings.TrimSpace(d.Domain), "."))
		if len(domain) == 0 {
			s.logger().Warn("dropping blank policy domain", "id", d.ID)
			continue
		}
		cfg.BlockedDomains = append(cfg.BlockedDomains, domain)
	}

	// Load the thresholds. A missing row just means the defaults.
	var settings models.PolicySettings
	err = s.DB.First(&settings).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrPolicyUnavailable, err)
	}
	if err == nil {
		if settings.ViolationWindowHours > 0 {
			cfg.ViolationWindowHours = settings.ViolationWindowHours
		}
		if settings.ViolationThreshold > 0 {
			cfg.ViolationThreshold = settings.ViolationThreshold
		}
		if settings.AutoSuspendHours > 0 {
			cfg.AutoSuspendHours = settings.AutoSuspendHours
		}
	}

	return cfg, nil

}

// AddWord adds a word to one of the filtered word lists
func (s *PolicyService) AddWord(kind, word string) (*models.PolicyWord, error) {

	// Validate the entry before it ever reaches the database
	word = strings.TrimSpace(word)
	if len(word) == 0 {
		return nil, errors.New("word must not be blank")
	}
	if kind != models.WordKindBlocked && kind != models.WordKindProhibited {
		return nil, errors.New("unknown word kind: " + kind)
	}

	// Insert the word
	record := models.PolicyWord{
		Kind:        kind,
		Word:        word,
		CreatedDate: time.Now(),
	}
	if err := s.DB.Create(&record).Error; err != nil {
		return nil, err
	}

	// Drop the cached snapshot so the next scan sees the new word
	s.Invalidate()
	return &record, nil

}

// RemoveWord removes a word from the filtered word lists
func (s *PolicyService) RemoveWord(kind, word string) error {
	err := s.DB.
		Model(&models.PolicyWord{}).
		Where("deleted_date IS NULL").
		Where("kind = ?", kind).
		Where("word LIKE ?", strings.TrimSpace(word)).
		Update("deleted_date", time.Now()).
		Error
	if err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

// AddDomain adds a domain suffix to the blocked domain list
func (s *PolicyService) AddDomain(domain string) (*models.PolicyDomain, error) {

	domain = strings.ToLower(strings.Trim(strings.TrimSpace(domain), "."))
	if len(domain) == 0 {
		return nil, errors.New("domain must not be blank")
	}

	record := models.PolicyDomain{
		Domain:      domain,
		CreatedDate: time.Now(),
	}
	if err := s.DB.Create(&record).Error; err != nil {
		return nil, err
	}

	s.Invalidate()
	return &record, nil

}

// RemoveDomain removes a domain suffix from the blocked domain list
func (s *PolicyService) RemoveDomain(domain string) error {
	err := s.DB.
		Model(&models.PolicyDomain{}).
		Where("deleted_date IS NULL").
		Where("domain LIKE ?", strings.ToLower(strings.TrimSpace(domain))).
		Update("deleted_date", time.Now()).
		Error
	if err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

// UpdateSettings replaces the escalation thresholds. Values must be
// positive hour/count figures.
func (s *PolicyService) UpdateSettings(windowHours, threshold, suspendHours int) error {

	if windowHours <= 0 || threshold <= 0 || suspendHours <= 0 {
		return errors.New("policy settings must be positive")
	}

	// Load the settings row, creating it if this is the first update
	var settings models.PolicySettings
	err := s.DB.First(&settings).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	settings.ViolationWindowHours = windowHours
	settings.ViolationThreshold = threshold
	settings.AutoSuspendHours = suspendHours
	settings.UpdatedDate = time.Now()
	if err := s.DB.Save(&settings).Error; err != nil {
		return err
	}

	s.Invalidate()
	return nil

}
