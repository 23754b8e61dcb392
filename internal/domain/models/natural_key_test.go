package models

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNaturalKey_Rehost(t *testing.T) {
	require.Equal(t, ItemKey("H", "k1"), ItemKey("T", "k1").Rehost("T", "H"))
	require.Equal(t, ItemKey("X", "k1"), ItemKey("X", "k1").Rehost("T", "H"))
	require.Equal(t, GroupKey("T"), GroupKey("T").Rehost("T", "H"), "global keys stay")
	require.Equal(t, HostKey("T"), HostKey("T").Rehost("T", "H"))
	require.Equal(t,
		TriggerKey("high", "{H:k1.last()}>1"),
		TriggerKey("high", "{T:k1.last()}>1").Rehost("T", "H"))
}

func TestNaturalKey_StorageAndString(t *testing.T) {
	tpl := NaturalKey{Kind: KindTemplate, Name: "T"}
	require.Equal(t, HostKey("T"), tpl.Storage())
	require.Equal(t, "item(H:k1)", ItemKey("H", "k1").String())
	require.Equal(t, "trigger(high, {H:k1.last()}>1)", TriggerKey("high", "{H:k1.last()}>1").String())
	require.Equal(t, "group(G1)", GroupKey("G1").String())
}

func TestNaturalKey_Less(t *testing.T) {
	keys := []NaturalKey{
		ItemKey("B", "a"),
		GroupKey("z"),
		ItemKey("A", "b"),
		ItemKey("A", "a"),
		TriggerKey("t", "2"),
		TriggerKey("t", "1"),
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	require.Equal(t, []NaturalKey{
		GroupKey("z"),
		ItemKey("A", "a"),
		ItemKey("A", "b"),
		ItemKey("B", "a"),
		TriggerKey("t", "1"),
		TriggerKey("t", "2"),
	}, keys)
}
