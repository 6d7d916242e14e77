// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package freq

// SelectSeed returns the index of the table with the greatest number of
// distinct k-mers. Ties are broken in favour of the lowest index.
func SelectSeed(tables []*Table) (int, error) {
	if len(tables) == 0 {
		return -1, ErrNoTables
	}
	seed := 0
	for i, t := range tables[1:] {
		if t.Len() > tables[seed].Len() {
			seed = i + 1
		}
	}
	return seed, nil
}
