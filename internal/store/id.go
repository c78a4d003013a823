package store

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentID is a lookup key that is either a structured ObjectID or a raw
// string. Callers hand us identifiers that may be 24-hex ObjectIDs or
// arbitrary strings; the form is resolved once at parse time instead of
// being rediscovered query by query.
type DocumentID struct {
	oid   primitive.ObjectID
	raw   string
	isOID bool
}

// ParseDocumentID normalizes a raw identifier. A valid 24-hex-character
// string becomes a structured ObjectID; anything else is kept as a raw
// string matched by equality.
func ParseDocumentID(s string) DocumentID {
	if oid, err := primitive.ObjectIDFromHex(s); err == nil {
		return DocumentID{oid: oid, isOID: true}
	}
	return DocumentID{raw: s}
}

// IsObjectID reports whether the identifier resolved to a structured
// ObjectID.
func (id DocumentID) IsObjectID() bool {
	return id.isOID
}

// Filter returns the _id equality filter for this identifier.
func (id DocumentID) Filter() bson.M {
	return bson.M{"_id": id.Value()}
}

// Value returns the BSON value to match against _id.
func (id DocumentID) Value() any {
	if id.isOID {
		return id.oid
	}
	return id.raw
}

// String returns the identifier in its original textual form.
func (id DocumentID) String() string {
	if id.isOID {
		return id.oid.Hex()
	}
	return id.raw
}
