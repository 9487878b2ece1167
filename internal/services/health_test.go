package services

import (
	"reflect"
	"testing"
)

func TestCleanTagsSingleWordLowercase(t *testing.T) {
	got := CleanTags([]string{"High Intensity", "CARDIO", "weight training"}, 30)
	want := []string{"high", "cardio", "weight"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCleanTagsDeduplicates(t *testing.T) {
	got := CleanTags([]string{"yoga", "Yoga flow", "stretching"}, 10)
	want := []string{"yoga", "stretching", "healthy"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCleanTagsPadsByScoreSign(t *testing.T) {
	cases := []struct {
		name  string
		tags  []string
		score float64
		want  []string
	}{
		{"positive", []string{"running"}, 45, []string{"running", "healthy", "healthy"}},
		{"negative", []string{"smoking"}, -120, []string{"smoking", "unhealthy", "unhealthy"}},
		{"zero", nil, 0, []string{"neutral", "neutral", "neutral"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CleanTags(tc.tags, tc.score)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCleanTagsTruncatesToThree(t *testing.T) {
	got := CleanTags([]string{"a", "b", "c", "d", "e"}, 5)
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("got %v", got)
	}
}

func TestCleanTagsSkipsBlankEntries(t *testing.T) {
	got := CleanTags([]string{"  ", "", "swim"}, 1)
	if !reflect.DeepEqual(got, []string{"swim", "healthy", "healthy"}) {
		t.Fatalf("got %v", got)
	}
}

func TestCategorizeEnvironment(t *testing.T) {
	cases := []struct {
		labels []string
		want   string
	}{
		{[]string{"Gym", "dumbbell"}, "indoor_gym"},
		{[]string{"tree", "Park"}, "outdoor"},
		{[]string{"sofa", "living room"}, "home"},
		{[]string{"Yoga Studio"}, "studio"},
		{[]string{"spaceship"}, "unknown"},
		{nil, "unknown"},
	}
	for _, tc := range cases {
		if got := CategorizeEnvironment(tc.labels); got != tc.want {
			t.Fatalf("CategorizeEnvironment(%v) = %q, want %q", tc.labels, got, tc.want)
		}
	}
}
