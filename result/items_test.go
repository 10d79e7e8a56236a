package result

import (
	"testing"

	. "github.com/fulldump/biff"

	"github.com/quilldb/quilldb/engine"
)

func stringItems(values ...string) []*Item {
	items := make([]*Item, 0, len(values))
	for _, v := range values {
		items = append(items, itemFromValue(v, engine.Root))
	}
	return items
}

func yieldStr(item *Item) string {
	s, _ := item.Str()
	return s
}

func TestItemsForwardTraversal(t *testing.T) {

	// Setup
	it := Items{items: stringItems("a", "b", "c")}

	// Run & Check
	AssertEqual(it.Size(), 3)
	AssertEqual(yieldStr(it.Next(1)), "a")
	AssertEqual(yieldStr(it.Next(1)), "b")
	AssertEqual(yieldStr(it.Next(1)), "c")
	AssertNil(it.Next(1))
	AssertNil(it.Next(1))
	AssertEqual(it.Size(), 3)
}

func TestItemsReversedTraversal(t *testing.T) {

	// Setup
	forward := Items{items: stringItems("a", "b", "c")}

	// Run
	it := forward.Reversed()

	// Check
	AssertEqual(yieldStr(it.Next(1)), "c")
	AssertEqual(yieldStr(it.Next(1)), "b")
	AssertEqual(yieldStr(it.Next(1)), "a")
	AssertNil(it.Next(1))
}

func TestItemsCrossingOddLength(t *testing.T) {

	// Setup: seven items, so both directions meet in the middle
	items := stringItems("1", "2", "3", "4", "5", "6", "7")
	forward := Items{items: items}
	reversed := forward.Reversed()

	// Run: four steps each from opposite ends
	var fromFront, fromBack *Item
	for step := 0; step < 4; step++ {
		fromFront = forward.Next(1)
		fromBack = reversed.Next(1)
	}

	// Check: the fourth step lands both on the same middle element
	AssertEqual(fromFront, fromBack)
	AssertEqual(yieldStr(fromFront), "4")
}

func TestItemsCrossingEvenLength(t *testing.T) {

	// Setup: eight items, no shared middle
	items := stringItems("1", "2", "3", "4", "5", "6", "7", "8")
	forward := Items{items: items}
	reversed := forward.Reversed()

	var fromFront, fromBack *Item
	for step := 0; step < 4; step++ {
		fromFront = forward.Next(1)
		fromBack = reversed.Next(1)
	}

	// Check: the middle steps land on the two distinct middle elements
	AssertNotEqual(fromFront, fromBack)
	AssertEqual(yieldStr(fromFront), "4")
	AssertEqual(yieldStr(fromBack), "5")
}

func TestItemsPrevStepsBackOverYielded(t *testing.T) {

	// Setup
	it := Items{items: stringItems("a", "b", "c", "d")}
	it.Next(1)
	it.Next(1)
	it.Next(1)

	// Run & Check: Prev revisits in reverse order of yielding
	AssertEqual(yieldStr(it.Prev(1)), "c")
	AssertEqual(yieldStr(it.Prev(1)), "b")
	AssertEqual(yieldStr(it.Prev(1)), "a")
	AssertNil(it.Prev(1))
}

func TestItemsPrevOnFreshCursor(t *testing.T) {

	// Setup
	it := Items{items: stringItems("a", "b")}

	// Run & Check: stepping back before the start exhausts the cursor
	AssertNil(it.Prev(1))
	AssertNil(it.Next(1))
}

func TestItemsPrevRecoversExhaustedCursor(t *testing.T) {

	// Setup
	it := Items{items: stringItems("a", "b", "c")}
	for it.Next(1) != nil {
	}

	// Run & Check
	AssertEqual(yieldStr(it.Prev(1)), "c")
	AssertEqual(yieldStr(it.Next(1)), "c")
}

func TestItemsReversalMidTraversal(t *testing.T) {

	// Setup: advance past "a" and "b"
	it := Items{items: stringItems("a", "b", "c", "d", "e")}
	it.Next(1)
	it.Next(1)

	// Run: the mirrored cursor sits on the same upcoming element
	back := it.Reversed()

	// Check: it walks back toward the front from there
	AssertEqual(yieldStr(back.Next(1)), "c")
	AssertEqual(yieldStr(back.Next(1)), "b")
	AssertEqual(yieldStr(back.Next(1)), "a")
	AssertNil(back.Next(1))

	// The original cursor is unaffected, copies advance independently
	AssertEqual(yieldStr(it.Next(1)), "c")
}

func TestItemsDoubleReversalRoundTrips(t *testing.T) {

	// Setup
	it := Items{items: stringItems("a", "b", "c")}
	it.Next(1)

	// Run
	twice := it.Reversed().Reversed()

	// Check
	AssertEqual(twice, it)
	AssertEqual(yieldStr(twice.Next(1)), "b")
}

func TestItemsRewoundIsIdempotent(t *testing.T) {

	// Setup
	it := Items{items: stringItems("a", "b", "c")}
	it.Next(1)
	it.Next(1)

	// Run
	rewound := it.Rewound()

	// Check: back at the first element, and rewinding again changes nothing
	AssertEqual(rewound, rewound.Rewound())
	AssertEqual(yieldStr(rewound.Next(1)), "a")

	// A reversed cursor rewinds to the back, keeping its orientation
	back := it.Reversed()
	back.Next(1)
	back.Next(1)
	backRewound := back.Rewound()
	AssertEqual(backRewound, backRewound.Rewound())
	AssertEqual(yieldStr(backRewound.Next(1)), "c")
}

func TestItemsRewoundRepeatsDrain(t *testing.T) {

	// Setup: drain once
	it := Items{items: stringItems("a", "b", "c")}
	first := []string{}
	for item := it.Next(1); item != nil; item = it.Next(1) {
		first = append(first, yieldStr(item))
	}

	// Run: rewind and drain again
	again := it.Rewound()
	second := []string{}
	for item := again.Next(1); item != nil; item = again.Next(1) {
		second = append(second, yieldStr(item))
	}

	// Check: same elements, same order, same direction
	AssertEqual(second, first)
	AssertEqual(first, []string{"a", "b", "c"})

	// And the same for a reversed cursor
	back := it.Reversed().Rewound()
	drained := []string{}
	for item := back.Next(1); item != nil; item = back.Next(1) {
		drained = append(drained, yieldStr(item))
	}
	AssertEqual(drained, []string{"c", "b", "a"})
}

func TestItemsLargerStride(t *testing.T) {

	// Setup
	it := Items{items: stringItems("a", "b", "c", "d", "e")}

	// Run & Check: a stride of two yields every other element
	AssertEqual(yieldStr(it.Next(2)), "a")
	AssertEqual(yieldStr(it.Next(2)), "c")
	AssertEqual(yieldStr(it.Next(2)), "e")
	AssertNil(it.Next(2))
}

func TestItemsZeroStridePeeks(t *testing.T) {

	// Setup
	it := Items{items: stringItems("a", "b")}

	// Run & Check: Next(0) inspects without advancing
	AssertEqual(yieldStr(it.Next(0)), "a")
	AssertEqual(yieldStr(it.Next(0)), "a")
	AssertEqual(yieldStr(it.Next(1)), "a")
	AssertEqual(yieldStr(it.Next(0)), "b")
}

func TestItemsEmpty(t *testing.T) {

	// Setup
	it := Items{}

	// Check
	AssertEqual(it.Size(), 0)
	AssertNil(it.Next(1))
	AssertNil(it.Prev(1))
	back := it.Reversed()
	AssertNil(back.Next(1))
}
