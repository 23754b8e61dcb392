package pg

import (
	"encoding/json"

	"github.com/pkg/errors"

	"moncfg-backend/internal/domain/models"
)

// SchemaName database scheme name
const SchemaName = "moncfg"

var kind2table = map[models.Kind]string{
	models.KindGroup:            "tbl_group",
	models.KindHost:             "tbl_host",
	models.KindProxy:            "tbl_proxy",
	models.KindMacro:            "tbl_macro",
	models.KindApplication:      "tbl_application",
	models.KindItem:             "tbl_item",
	models.KindDiscoveryRule:    "tbl_discovery_rule",
	models.KindItemPrototype:    "tbl_item_prototype",
	models.KindTrigger:          "tbl_trigger",
	models.KindTriggerPrototype: "tbl_trigger_prototype",
	models.KindGraph:            "tbl_graph",
	models.KindGraphPrototype:   "tbl_graph_prototype",
	models.KindImage:            "tbl_image",
	models.KindMap:              "tbl_map",
	models.KindScreen:           "tbl_screen",
}

// TableName returns the schema qualified table of a kind
func TableName(kind models.Kind) (string, error) {
	tbl, ok := kind2table[kind.Storage()]
	if !ok {
		return "", errors.Errorf("no table for kind '%s'", kind)
	}
	return SchemaName + "." + tbl, nil
}

// encodeKey renders the storage form of a natural key for the unique natural_key column.
// The kind is implied by the table.
func encodeKey(k models.NaturalKey) string {
	b, _ := json.Marshal([]string{k.Host, k.Name, k.Expression})
	return string(b)
}

type row struct {
	naturalKey string
	hostID     int64
	templateID int64
	ruleID     int64
	payload    []byte
}

func toRow(rec models.Record) (row, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return row{}, errors.Wrapf(err, "marshal %s payload", rec.Key())
	}
	ret := row{
		naturalKey: encodeKey(rec.Key()),
		hostID:     int64(rec.GetHostID()),
		templateID: int64(rec.GetTemplateID()),
		payload:    payload,
	}
	if ro, ok := rec.(models.RuleOwned); ok {
		ret.ruleID = int64(ro.GetRuleID())
	}
	return ret, nil
}

func fromRow(kind models.Kind, id int64, payload []byte) (models.Record, error) {
	rec := models.NewRecord(kind.Storage())
	if rec == nil {
		return nil, errors.Errorf("unsupported kind '%s'", kind)
	}
	if err := json.Unmarshal(payload, rec); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s #%d payload", kind.Storage(), id)
	}
	rec.SetID(models.ID(id))
	return rec, nil
}

func toInt64s(ids []models.ID) []int64 {
	ret := make([]int64, 0, len(ids))
	for _, id := range ids {
		ret = append(ret, int64(id))
	}
	return ret
}
