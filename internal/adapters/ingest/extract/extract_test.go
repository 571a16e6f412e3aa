package extract

import (
	"encoding/json"
	"testing"

	"ghcensus/internal/adapters/ingest/gharchive"
)

func TestActorFrom(t *testing.T) {
	t.Parallel()

	env := gharchive.EventEnvelope{Actor: gharchive.Actor{ID: 7, Login: "alice"}}
	a, ok := ActorFrom(env)
	if !ok || a.ID != 7 || a.Username != "alice" {
		t.Fatalf("ActorFrom = %+v %v", a, ok)
	}

	if _, ok := ActorFrom(gharchive.EventEnvelope{Actor: gharchive.Actor{ID: 7}}); ok {
		t.Fatal("actor without login should be dropped")
	}
	if _, ok := ActorFrom(gharchive.EventEnvelope{Actor: gharchive.Actor{Login: "x"}}); ok {
		t.Fatal("actor without id should be dropped")
	}
}

func TestRepoFrom(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		repo  gharchive.Repo
		want  RepoCandidate
		keep  bool
	}{
		{"normal", gharchive.Repo{ID: 9, Name: "alice/tool"}, RepoCandidate{9, "tool", "alice"}, true},
		{"no slash", gharchive.Repo{ID: 9, Name: "tool"}, RepoCandidate{}, false},
		{"two slashes", gharchive.Repo{ID: 9, Name: "a/b/c"}, RepoCandidate{}, false},
		{"empty owner", gharchive.Repo{ID: 9, Name: "/tool"}, RepoCandidate{}, false},
		{"empty name", gharchive.Repo{ID: 9, Name: "alice/"}, RepoCandidate{}, false},
		{"zero id", gharchive.Repo{Name: "alice/tool"}, RepoCandidate{}, false},
	}
	for _, c := range cases {
		got, ok := RepoFrom(gharchive.EventEnvelope{Repo: c.repo})
		if ok != c.keep || got != c.want {
			t.Errorf("%s: RepoFrom = %+v,%v want %+v,%v", c.name, got, ok, c.want, c.keep)
		}
	}
}

func pushEnv(actorID int64, payload string) gharchive.EventEnvelope {
	return gharchive.EventEnvelope{
		Type:    "PushEvent",
		Actor:   gharchive.Actor{ID: actorID, Login: "alice"},
		Payload: json.RawMessage(payload),
	}
}

func TestEmailsFrom(t *testing.T) {
	t.Parallel()

	payload := `{"commits":[
		{"sha":"a","author":{"email":"dev@example.com","name":"Dev"}},
		{"sha":"b","author":{"email":"7+alice@users.noreply.github.com","name":"Alice"}},
		{"sha":"c","author":{"email":"","name":"Empty"}},
		{"sha":"d","author":{"email":"not-an-email","name":"Junk"}}
	]}`

	rows := EmailsFrom(pushEnv(7, payload))
	if len(rows) != 2 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Email != "dev@example.com" || rows[0].Private {
		t.Fatalf("first row wrong: %+v", rows[0])
	}
	if !rows[1].Private {
		t.Fatalf("noreply address should be private: %+v", rows[1])
	}
	for _, r := range rows {
		if r.ActorID != 7 {
			t.Fatalf("rows must carry the pushing actor id: %+v", r)
		}
	}
}

func TestEmailsFromIgnoresOtherEvents(t *testing.T) {
	t.Parallel()

	env := gharchive.EventEnvelope{
		Type:    "WatchEvent",
		Actor:   gharchive.Actor{ID: 7, Login: "alice"},
		Payload: json.RawMessage(`{"commits":[{"author":{"email":"dev@example.com"}}]}`),
	}
	if rows := EmailsFrom(env); rows != nil {
		t.Fatalf("non-push events must yield nothing, got %+v", rows)
	}
	if rows := EmailsFrom(pushEnv(7, `not json`)); rows != nil {
		t.Fatalf("bad payload must yield nothing, got %+v", rows)
	}
}

func TestIsPrivateEmail(t *testing.T) {
	t.Parallel()

	if !IsPrivateEmail("12345+bob@users.noreply.github.com") {
		t.Fatal("noreply suffix should be private")
	}
	if IsPrivateEmail("bob@example.com") {
		t.Fatal("plain address should not be private")
	}
}
