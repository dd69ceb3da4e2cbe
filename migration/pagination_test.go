package migration

import "testing"

func TestPaginate(t *testing.T) {
	cases := []struct {
		name       string
		totalCount int64
		page       int
		pageSize   int
		totalPages int
		remaining  int
		nextPage   int // 0 means nil
	}{
		{"first of three", 25, 1, 10, 3, 2, 2},
		{"middle page", 25, 2, 10, 3, 1, 3},
		{"last partial page", 25, 3, 10, 3, 0, 0},
		{"past the end", 25, 4, 10, 3, 0, 0},
		{"exact multiple", 30, 3, 10, 3, 0, 0},
		{"single page", 7, 1, 10, 1, 0, 0},
		{"empty source", 0, 1, 10, 0, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Paginate(tc.totalCount, tc.page, tc.pageSize)
			if got.CurrentPage != tc.page {
				t.Errorf("CurrentPage = %d, want %d", got.CurrentPage, tc.page)
			}
			if got.TotalPages != tc.totalPages {
				t.Errorf("TotalPages = %d, want %d", got.TotalPages, tc.totalPages)
			}
			if got.RemainingPages != tc.remaining {
				t.Errorf("RemainingPages = %d, want %d", got.RemainingPages, tc.remaining)
			}
			if tc.nextPage == 0 {
				if got.NextPage != nil {
					t.Errorf("NextPage = %d, want nil", *got.NextPage)
				}
			} else {
				if got.NextPage == nil {
					t.Fatalf("NextPage = nil, want %d", tc.nextPage)
				}
				if *got.NextPage != tc.nextPage {
					t.Errorf("NextPage = %d, want %d", *got.NextPage, tc.nextPage)
				}
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := Offset(1, 10); got != 0 {
		t.Errorf("Offset(1, 10) = %d, want 0", got)
	}
	if got := Offset(3, 10); got != 20 {
		t.Errorf("Offset(3, 10) = %d, want 20", got)
	}
	if got := Offset(2, 7); got != 7 {
		t.Errorf("Offset(2, 7) = %d, want 7", got)
	}
}
