package main

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/repwise/repwise/internal/catalog"
)

func Test_exercisesGET(t *testing.T) {
	ts := newTestServer(t)

	var response struct {
		Exercises []catalog.Exercise `json:"exercises"`
	}
	if status := ts.get(t, "/api/exercises", &response); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if len(response.Exercises) == 0 {
		t.Fatal("expected seeded exercises")
	}
	found := false
	for _, exercise := range response.Exercises {
		if exercise.Name == "Bench Press" && exercise.MuscleGroup == "chest" {
			found = true
		}
	}
	if !found {
		t.Error("Bench Press missing from the catalog")
	}
}

func Test_exerciseGET_notFound(t *testing.T) {
	ts := newTestServer(t)

	if status := ts.get(t, "/api/exercises/99999", nil); status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	if status := ts.get(t, "/api/exercises/not-a-number", nil); status != http.StatusNotFound {
		t.Errorf("status for malformed ID = %d, want 404", status)
	}
}

func Test_exerciseCreatePOST(t *testing.T) {
	ts := newTestServer(t)

	var created catalog.Exercise
	status := ts.post(t, "/api/exercises", createExerciseRequest{Name: "Cable Fly"}, &created)
	if status != http.StatusCreated {
		t.Fatalf("status = %d, want 201", status)
	}
	if created.Name != "Cable Fly" {
		t.Errorf("Name = %q, want Cable Fly", created.Name)
	}
	if created.ID == 0 {
		t.Error("created exercise has no ID")
	}

	var fetched catalog.Exercise
	if status = ts.get(t, "/api/exercises/"+strconv.Itoa(created.ID), &fetched); status != http.StatusOK {
		t.Fatalf("get created exercise status = %d, want 200", status)
	}
	if fetched.Name != created.Name {
		t.Errorf("fetched name = %q, want %q", fetched.Name, created.Name)
	}
}

func Test_exerciseCreatePOST_emptyName(t *testing.T) {
	ts := newTestServer(t)

	status := ts.post(t, "/api/exercises", createExerciseRequest{Name: "   "}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

func Test_muscleGroupsGET(t *testing.T) {
	ts := newTestServer(t)

	var response struct {
		MuscleGroups []string `json:"muscle_groups"`
	}
	if status := ts.get(t, "/api/muscle-groups", &response); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	for _, want := range []string{"chest", "back", "quads"} {
		found := false
		for _, group := range response.MuscleGroups {
			if group == want {
				found = true
			}
		}
		if !found {
			t.Errorf("muscle group %q missing", want)
		}
	}
}
