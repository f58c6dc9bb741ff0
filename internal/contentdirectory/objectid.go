// Package contentdirectory implements the UPnP ContentDirectory:1 control
// core: object-id decoding, the virtual browse hierarchy, paging, and the
// action dispatcher. Transport (SOAP parsing) and presentation (DIDL
// rendering) live behind ports.
package contentdirectory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hearthcast/hearthcast/internal/library"
)

// RootObjectID is the canonical object id of the library root.
const RootObjectID = "0"

const (
	folderPrefix = "folder_"
	peoplePrefix = "people_"

	// paramsIDField is the semicolon-field index carrying the item id inside
	// a Params= wrapped object id. One legacy remote-control client sends ids
	// embedded this way; the offset is fixed and kept verbatim.
	paramsIDField = 23
)

// StubKind classifies a synthetic node layered over a real item.
type StubKind int

const (
	// StubNone marks a plain library item.
	StubNone StubKind = iota
	// StubFolder displays a named entity (person, genre, studio) as a
	// browsable folder even though its kind is not a native container.
	StubFolder
	// StubPeople is the synthetic listing of an item's cast and crew.
	StubPeople
)

// Node pairs a resolved library item with an optional stub classification.
// Nodes are request-scoped and immutable once built.
type Node struct {
	Item library.Item
	Stub StubKind
}

// FolderLike reports whether the node browses as a container.
func (n Node) FolderLike() bool {
	return n.Stub != StubNone || n.Item.IsFolder()
}

// Codec decodes and encodes the opaque ObjectID strings clients exchange.
type Codec struct {
	log   *zap.Logger
	store library.Store
}

// NewCodec creates an object-id codec over the library store.
func NewCodec(log *zap.Logger, store library.Store) Codec {
	if log == nil {
		log = zap.NewNop()
	}
	return Codec{log: log, store: store}
}

// Decode resolves a raw object id to a node. Decoding is total: malformed
// ids, unknown items, and lookup failures all degrade to the user's root
// folder so a misbehaving client keeps a working browse session.
func (c Codec) Decode(ctx context.Context, raw string, user library.User) Node {
	id := strings.TrimSpace(raw)
	if id == "" || id == RootObjectID {
		return c.root(ctx, user)
	}

	if idx := strings.Index(strings.ToLower(id), "params="); idx >= 0 {
		fields := strings.Split(id[idx+len("params="):], ";")
		if len(fields) > paramsIDField {
			id = fields[paramsIDField]
		}
	}

	stub := StubNone
	switch {
	case strings.HasPrefix(id, folderPrefix):
		stub = StubFolder
		id = id[strings.Index(id, "_")+1:]
	case strings.HasPrefix(id, peoplePrefix):
		stub = StubPeople
		id = id[strings.Index(id, "_")+1:]
	}

	itemID, err := uuid.Parse(id)
	if err != nil {
		c.log.Error("undecodable object id, falling back to root",
			zap.String("object_id", raw),
			zap.Error(err),
		)
		return c.root(ctx, user)
	}

	item, ok, err := c.store.ItemByID(ctx, itemID)
	if err != nil || !ok {
		c.log.Error("object id lookup failed, falling back to root",
			zap.String("object_id", raw),
			zap.Bool("found", ok),
			zap.Error(err),
		)
		return c.root(ctx, user)
	}
	return Node{Item: item, Stub: stub}
}

func (c Codec) root(ctx context.Context, user library.User) Node {
	root, err := c.store.UserRoot(ctx, user)
	if err != nil {
		c.log.Error("user root lookup failed", zap.String("user", user.Name), zap.Error(err))
		return Node{Item: library.Item{ID: user.RootID, Kind: library.KindFolder}}
	}
	return Node{Item: root}
}

// EncodeID renders a node back into the wire object-id form.
func EncodeID(node Node, user library.User) string {
	switch node.Stub {
	case StubFolder:
		return folderPrefix + node.Item.ID.String()
	case StubPeople:
		return peoplePrefix + node.Item.ID.String()
	}
	if node.Item.ID == user.RootID {
		return RootObjectID
	}
	return node.Item.ID.String()
}

// EncodeParentID renders the parent reference for a node. The root's parent
// is "-1" per the ContentDirectory spec; unknown parents collapse to root.
func EncodeParentID(node Node, user library.User) string {
	if node.Stub == StubNone && node.Item.ID == user.RootID {
		return "-1"
	}
	if node.Item.ParentID == uuid.Nil || node.Item.ParentID == user.RootID {
		return RootObjectID
	}
	return node.Item.ParentID.String()
}
