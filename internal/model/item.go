package model

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Item is one entry of a selectable catalog. Early lists stored items as
// bare name strings; current lists store structured documents. Decoding
// accepts both shapes, encoding always writes the structured form.
type Item struct {
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

// itemDoc is the structured wire form; a plain struct so the custom Item
// codec does not recurse into itself.
type itemDoc struct {
	Name        string `json:"name" bson:"name"`
	Icon        string `json:"icon,omitempty" bson:"icon,omitempty"`
	Category    string `json:"category,omitempty" bson:"category,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// MarshalBSONValue always writes the structured document form.
func (i Item) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(itemDoc(i))
}

// UnmarshalBSONValue accepts either a bare string or a structured document.
func (i *Item) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bson.TypeString:
		rv := bson.RawValue{Type: t, Value: data}
		name, ok := rv.StringValueOK()
		if !ok {
			return fmt.Errorf("malformed string value for item")
		}
		*i = Item{Name: name}
		return nil
	case bson.TypeEmbeddedDocument:
		var doc itemDoc
		if err := bson.Unmarshal(data, &doc); err != nil {
			return err
		}
		*i = Item(doc)
		return nil
	default:
		return fmt.Errorf("cannot decode %s into an item", t)
	}
}

// UnmarshalJSON accepts either a bare string or an object.
func (i *Item) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*i = Item{Name: name}
		return nil
	}
	var doc itemDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*i = Item(doc)
	return nil
}

// ItemNames projects a catalog down to its names.
func ItemNames(items []Item) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}

// ContainsItem reports whether the catalog has an item with the exact name.
func ContainsItem(items []Item, name string) bool {
	for _, item := range items {
		if item.Name == name {
			return true
		}
	}
	return false
}
