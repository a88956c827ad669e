package browser

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

//Cookie struct represents a browser cookie from the storage-state file
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// Expired reports whether the cookie is past its expiry. Session cookies
// (expires <= 0) never expire here.
func (c Cookie) Expired(now time.Time) bool {
	if c.Expires <= 0 {
		return false
	}
	return now.After(time.Unix(int64(c.Expires), 0))
}

type Origin struct {
	Origin       string `json:"origin"`
	LocalStorage []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"localStorage"`
}

// StorageState is the file written by BrowserContext.StorageState.
type StorageState struct {
	Cookies []Cookie `json:"cookies"`
	Origins []Origin `json:"origins"`
}

func LoadState(path string) (*StorageState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var st StorageState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse storage state %s: %w", path, err)
	}
	return &st, nil
}

// Usable reports whether the state still carries something worth restoring.
func (s *StorageState) Usable(now time.Time) bool {
	for _, c := range s.Cookies {
		if !c.Expired(now) {
			return true
		}
	}
	return len(s.Origins) > 0
}

// StateUsable reports whether path holds a storage state a new context can be
// restored from. Missing or corrupt files are not usable.
func StateUsable(path string) bool {
	if path == "" {
		return false
	}
	st, err := LoadState(path)
	if err != nil {
		return false
	}
	return st.Usable(time.Now())
}
