package score

import (
	"reflect"
	"testing"
)

func TestMissingSections(t *testing.T) {
	expected := []string{"Reading", "Mathematical Reasoning", "Thinking Skills", "Writing"}

	tests := []struct {
		name      string
		completed map[string]bool
		want      []string
	}{
		{
			name:      "nothing completed",
			completed: map[string]bool{},
			want:      expected,
		},
		{
			name:      "partially completed",
			completed: map[string]bool{"Reading": true, "Writing": true},
			want:      []string{"Mathematical Reasoning", "Thinking Skills"},
		},
		{
			name: "all completed",
			completed: map[string]bool{
				"Reading": true, "Mathematical Reasoning": true,
				"Thinking Skills": true, "Writing": true,
			},
			want: nil,
		},
		{
			name: "extra sections do not open the gate",
			completed: map[string]bool{
				"Reading": true, "Writing": true, "Drills": true,
			},
			want: []string{"Mathematical Reasoning", "Thinking Skills"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MissingSections(expected, tc.completed)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
			if SectionsComplete(expected, tc.completed) != (len(tc.want) == 0) {
				t.Error("SectionsComplete disagrees with MissingSections")
			}
		})
	}
}
