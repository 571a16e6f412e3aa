// Package extract derives entity candidates from GH Archive event envelopes.
// Every function here is a pure mapping from one event to zero or more
// candidates; storage lookups happen later, in the ingest service
package extract

import (
	"encoding/json"
	"strings"

	"ghcensus/internal/adapters/ingest/gharchive"
)

// privateEmailSuffix marks provider-assigned no-reply commit identities
const privateEmailSuffix = "users.noreply.github.com"

// ActorRow is an account observation: stable id plus the login seen on this event
type ActorRow struct {
	ID       int64
	Username string
}

// RepoCandidate is a repository observation before its owner login has been
// resolved to a stored actor id
type RepoCandidate struct {
	ID         int64
	Name       string // without the owner prefix
	OwnerLogin string
}

// EmailRow is a commit-author identity observed on a push
type EmailRow struct {
	ActorID int64
	Email   string
	Name    string
	Private bool
}

// pushPayload models only the commit fields email extraction needs
type pushPayload struct {
	Commits []struct {
		SHA    string `json:"sha"`
		Author struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"author"`
	} `json:"commits"`
}

// ActorFrom returns the actor observation on env, if it carries one
func ActorFrom(env gharchive.EventEnvelope) (ActorRow, bool) {
	if env.Actor.ID == 0 || env.Actor.Login == "" {
		return ActorRow{}, false
	}
	return ActorRow{ID: env.Actor.ID, Username: env.Actor.Login}, true
}

// RepoFrom returns the repository observation on env. Envelopes whose repo
// name is not exactly owner/name are dropped
func RepoFrom(env gharchive.EventEnvelope) (RepoCandidate, bool) {
	if env.Repo.ID == 0 {
		return RepoCandidate{}, false
	}
	owner, name, ok := strings.Cut(env.Repo.Name, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepoCandidate{}, false
	}
	return RepoCandidate{ID: env.Repo.ID, Name: name, OwnerLogin: owner}, true
}

// EmailsFrom returns one row per commit with a usable author email on a push
// event. Non-push events yield nothing
func EmailsFrom(env gharchive.EventEnvelope) []EmailRow {
	if env.Type != "PushEvent" || env.Actor.ID == 0 || len(env.Payload) == 0 {
		return nil
	}
	var p pushPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return nil
	}
	var out []EmailRow
	for _, c := range p.Commits {
		email := strings.TrimSpace(c.Author.Email)
		if email == "" || !strings.Contains(email, "@") {
			continue
		}
		out = append(out, EmailRow{
			ActorID: env.Actor.ID,
			Email:   email,
			Name:    strings.TrimSpace(c.Author.Name),
			Private: IsPrivateEmail(email),
		})
	}
	return out
}

// IsPrivateEmail reports whether email is a provider-assigned no-reply address
func IsPrivateEmail(email string) bool {
	return strings.HasSuffix(email, privateEmailSuffix)
}
