package database

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// ToDocument converts a bson-tagged struct into a document.
func ToDocument(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal document")
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "unmarshal document")
	}
	return doc, nil
}

// Decode fills v from doc.
func Decode(doc bson.M, v interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshal document")
	}
	return errors.Wrap(bson.Unmarshal(raw, v), "decode document")
}

// DecodeAll decodes every document of a snapshot, keeping their order.
func DecodeAll[T any](docs []bson.M) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := Decode(d, &v); err != nil {
			return nil, errors.Wrapf(err, "document %v", d["_id"])
		}
		out = append(out, v)
	}
	return out, nil
}
