// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"github.com/meline-schndr/networking-project/internal/db"
)

// defaultStations is the fallback floor layout for when the authoritative
// store is unreachable at startup. Client and pizza lookups stay hard misses
// in that situation; only the stations have a safe default.
var defaultStations = []db.StationRow{
	{ID: 1, Capacity: 30, Oper: true, Size: "", Restrictions: "Veggie, Chevre"},
	{ID: 2, Capacity: 25, Oper: true, Size: "", Restrictions: ""},
	{ID: 3, Capacity: 18, Oper: true, Size: "G", Restrictions: "Chevre, 4_Fromages"},
	{ID: 4, Capacity: 20, Oper: true, Size: "M", Restrictions: ""},
	{ID: 5, Capacity: 27, Oper: false, Size: "M", Restrictions: ""},
	{ID: 6, Capacity: 15, Oper: true, Size: "", Restrictions: ""},
}
