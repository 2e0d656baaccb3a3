package asyncdb

import "testing"

func TestTaskQueue(t *testing.T) {
	var depths []int
	q := newTaskQueue(func(n int) { depths = append(depths, n) })

	for _, name := range []string{"a", "b", "c"} {
		if !q.push(task{name: name}) {
			t.Fatalf("push(%s) rejected", name)
		}
	}
	q.close()

	if q.push(task{name: "d"}) {
		t.Error("push after close accepted")
	}

	var got []string
	for {
		tk, ok := q.pop()
		if !ok {
			break
		}
		got = append(got, tk.name)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("popped %v, want [a b c]", got)
	}

	want := []int{1, 2, 3, 2, 1, 0}
	if len(depths) != len(want) {
		t.Fatalf("depths = %v, want %v", depths, want)
	}
	for i := range want {
		if depths[i] != want[i] {
			t.Errorf("depths = %v, want %v", depths, want)
			break
		}
	}
}
