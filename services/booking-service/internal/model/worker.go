package model

type Worker struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Specialty    string `json:"specialty"`
	Username     string `json:"username,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
	Fee          string `json:"fee"`
}

// Public strips credentials.
func (w Worker) Public() Worker {
	w.Username = ""
	w.PasswordHash = ""
	return w
}
