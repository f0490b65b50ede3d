package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Directory is the static worker roster. It is built once at startup and
// never written back to the store.
type Directory struct {
	workers    []model.Worker
	byID       map[string]int
	byUsername map[string]int
}

// Seed is a roster entry before hashing. Either Password or PasswordHash
// must be set.
type Seed struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Specialty    string `json:"specialty"`
	Username     string `json:"username"`
	Password     string `json:"password,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
	Fee          string `json:"fee"`
}

var defaultSeeds = []Seed{
	{ID: "1", Name: "María González", Specialty: "Corte y peinado", Username: "maria", Password: "maria123", Fee: "25.00"},
	{ID: "2", Name: "Carlos Rodríguez", Specialty: "Barbería", Username: "carlos", Password: "carlos123", Fee: "18.00"},
	{ID: "3", Name: "Lucía Fernández", Specialty: "Coloración", Username: "lucia", Password: "lucia123", Fee: "40.00"},
	{ID: "4", Name: "Javier Martínez", Specialty: "Manicura y pedicura", Username: "javier", Password: "javier123", Fee: "20.00"},
}

func DefaultDirectory() (*Directory, error) {
	return NewDirectory(defaultSeeds, bcrypt.DefaultCost)
}

// LoadDirectory reads a JSON array of seeds from path.
func LoadDirectory(path string) (*Directory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workers file: %w", err)
	}
	var seeds []Seed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return nil, fmt.Errorf("parse workers file: %w", err)
	}
	return NewDirectory(seeds, bcrypt.DefaultCost)
}

func NewDirectory(seeds []Seed, cost int) (*Directory, error) {
	d := &Directory{byID: map[string]int{}, byUsername: map[string]int{}}
	for _, s := range seeds {
		s.ID = strings.TrimSpace(s.ID)
		s.Username = strings.ToLower(strings.TrimSpace(s.Username))
		if s.ID == "" || s.Username == "" {
			return nil, fmt.Errorf("worker %q: id and username are required", s.Name)
		}
		if _, dup := d.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate worker id %q", s.ID)
		}
		if _, dup := d.byUsername[s.Username]; dup {
			return nil, fmt.Errorf("duplicate worker username %q", s.Username)
		}
		hash := s.PasswordHash
		if hash == "" {
			if s.Password == "" {
				return nil, fmt.Errorf("worker %q: password or password_hash is required", s.ID)
			}
			h, err := hashPassword(s.Password, cost)
			if err != nil {
				return nil, err
			}
			hash = h
		}
		d.byID[s.ID] = len(d.workers)
		d.byUsername[s.Username] = len(d.workers)
		d.workers = append(d.workers, model.Worker{
			ID:           s.ID,
			Name:         s.Name,
			Specialty:    s.Specialty,
			Username:     s.Username,
			PasswordHash: hash,
			Fee:          s.Fee,
		})
	}
	return d, nil
}

func (d *Directory) Lookup(id string) (model.Worker, bool) {
	i, ok := d.byID[strings.TrimSpace(id)]
	if !ok {
		return model.Worker{}, false
	}
	return d.workers[i], true
}

func (d *Directory) Authenticate(username, password string) (model.Worker, error) {
	i, ok := d.byUsername[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return model.Worker{}, ErrInvalidCredentials
	}
	w := d.workers[i]
	if err := verifyPassword(w.PasswordHash, password); err != nil {
		return model.Worker{}, ErrInvalidCredentials
	}
	return w, nil
}

// All returns the roster without credentials.
func (d *Directory) All() []model.Worker {
	out := make([]model.Worker, 0, len(d.workers))
	for _, w := range d.workers {
		out = append(out, w.Public())
	}
	return out
}

func hashPassword(raw string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hash, raw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw))
}
