package contentdirectory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hearthcast/hearthcast/internal/library"
	"github.com/hearthcast/hearthcast/pkg/didl"
)

// Sentinel errors for control faults. The transport maps these onto UPnP
// error codes; everything else is a backend failure and surfaces as a
// generic action fault.
var (
	ErrActionNotFound  = errors.New("action not implemented")
	ErrNotContainer    = errors.New("object is not a container")
	ErrInvalidArgument = errors.New("invalid argument")
)

const (
	searchCapabilities = "res@resolution,res@size,res@duration,dc:title,dc:creator,upnp:actor,upnp:artist,upnp:genre,upnp:album,dc:date,upnp:class,@id,@refID,@protocolInfo,upnp:author,dc:description,pv:avKeywords"

	sortCapabilities = "res@duration,res@size,res@bitrate,dc:date,dc:title,dc:size,upnp:class,upnp:album,upnp:episodeNumber,upnp:originalTrackNumber,upnp:rating"

	sortExtensionCapabilities = "+,-,TIME,TIME+,TIME-"

	featureList = `<Features xmlns="urn:schemas-upnp-org:av:avs" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="urn:schemas-upnp-org:av:avs http://www.upnp.org/schemas/av/avs.xsd"><Feature name="samsung.com_BASICVIEW" version="1"><container id="I" type="object.item.imageItem"/><container id="A" type="object.item.audioItem"/><container id="V" type="object.item.videoItem"/></Feature></Features>`
)

// Request is one decoded control invocation. Action and parameter names
// match case-insensitively; clients disagree on casing.
type Request struct {
	Action string
	Params map[string]string
}

// Param returns a parameter value by case-insensitive name.
func (r Request) Param(name string) string {
	if v, ok := r.Params[name]; ok {
		return v
	}
	for k, v := range r.Params {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Arg is one named output value of an action response.
type Arg struct {
	Name  string
	Value string
}

// Response is the ordered output argument list of an action. Order is
// preserved because response elements are serialized in declaration order.
type Response []Arg

// Value returns a response argument by name, or "" when absent.
func (r Response) Value(name string) string {
	for _, a := range r {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// Filter is a parsed property filter. The wildcard admits everything.
type Filter struct {
	all   bool
	props map[string]struct{}
}

// ParseFilter parses the wire Filter value. Empty defaults to the wildcard.
func ParseFilter(raw string) Filter {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "*" {
		return Filter{all: true}
	}
	f := Filter{props: map[string]struct{}{}}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "*" {
			f.all = true
			continue
		}
		if p != "" {
			f.props[strings.ToLower(p)] = struct{}{}
		}
	}
	return f
}

// Has reports whether the filter admits a property.
func (f Filter) Has(prop string) bool {
	if f.all {
		return true
	}
	_, ok := f.props[strings.ToLower(prop)]
	return ok
}

// Presenter renders resolved nodes into DIDL-Lite elements. Device-profile
// quirks live behind it.
type Presenter interface {
	FolderElement(node Node, user library.User, childCount int64, filter Filter) didl.Object
	ItemElement(node Node, user library.User, filter Filter) didl.Object
	Render(objects []didl.Object) (string, error)
}

type actionFunc func(ctx context.Context, user library.User, req Request) (Response, error)

// Service is the ContentDirectory action dispatcher. It is stateless per
// request and safe for concurrent use.
type Service struct {
	log       *zap.Logger
	userData  library.UserData
	updates   library.UpdateSource
	codec     Codec
	resolver  Resolver
	presenter Presenter
	actions   map[string]actionFunc
}

// NewService wires the dispatcher over its collaborators.
func NewService(log *zap.Logger, store library.Store, userData library.UserData, updates library.UpdateSource, presenter Presenter) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		log:       log,
		userData:  userData,
		updates:   updates,
		codec:     NewCodec(log, store),
		resolver:  NewResolver(log, store),
		presenter: presenter,
	}
	s.actions = map[string]actionFunc{
		"browse":                       s.browse,
		"search":                       s.search,
		"x_browsebyletter":             s.browseByLetter,
		"getsearchcapabilities":        s.searchCaps,
		"getsortcapabilities":          s.sortCaps,
		"getsortextensioncapabilities": s.sortExtensionCaps,
		"getsystemupdateid":            s.systemUpdateID,
		"getfeaturelist":               s.features,
		"x_getfeaturelist":             s.features,
		"x_setbookmark":                s.setBookmark,
	}
	return s
}

// Handle dispatches one action invocation.
func (s *Service) Handle(ctx context.Context, user library.User, req Request) (Response, error) {
	fn, ok := s.actions[strings.ToLower(strings.TrimSpace(req.Action))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrActionNotFound, req.Action)
	}
	return fn(ctx, user, req)
}

func (s *Service) browse(ctx context.Context, user library.User, req Request) (Response, error) {
	filter := ParseFilter(req.Param("Filter"))
	sort := ParseSortCriteria(req.Param("SortCriteria"))
	w := ParseWindow(req.Param("StartingIndex"), req.Param("RequestedCount"))
	node := s.codec.Decode(ctx, req.Param("ObjectID"), user)

	flag := req.Param("BrowseFlag")
	if strings.EqualFold(flag, "BrowseMetadata") {
		return s.browseMetadata(ctx, user, node, filter)
	}
	if !strings.EqualFold(flag, "BrowseDirectChildren") {
		s.log.Warn("unknown browse flag, treating as direct children", zap.String("browse_flag", flag))
	}

	page, err := s.resolver.Children(ctx, node, user, sort, w)
	if err != nil {
		return nil, err
	}
	objects, err := s.renderPage(ctx, user, page, filter, nil)
	if err != nil {
		return nil, err
	}
	return s.enumerationResponse(objects, len(page.Nodes), page.Total)
}

func (s *Service) browseMetadata(ctx context.Context, user library.User, node Node, filter Filter) (Response, error) {
	var obj didl.Object
	if node.FolderLike() {
		count, err := s.resolver.ChildCount(ctx, node, user)
		if err != nil {
			return nil, err
		}
		obj = s.presenter.FolderElement(node, user, count, filter)
	} else {
		obj = s.presenter.ItemElement(node, user, filter)
	}
	xml, err := s.presenter.Render([]didl.Object{obj})
	if err != nil {
		return nil, err
	}
	return Response{
		{Name: "Result", Value: xml},
		{Name: "NumberReturned", Value: "1"},
		{Name: "TotalMatches", Value: "1"},
		{Name: "UpdateID", Value: s.updateID()},
	}, nil
}

func (s *Service) search(ctx context.Context, user library.User, req Request) (Response, error) {
	filter := ParseFilter(req.Param("Filter"))
	sort := ParseSortCriteria(req.Param("SortCriteria"))
	w := ParseWindow(req.Param("StartingIndex"), req.Param("RequestedCount"))
	st := ClassifySearch(req.Param("SearchCriteria"))

	node := s.codec.Decode(ctx, req.Param("ContainerID"), user)
	if !node.FolderLike() {
		return nil, fmt.Errorf("%w: search container %q", ErrNotContainer, req.Param("ContainerID"))
	}

	page, err := s.resolver.Search(ctx, node, user, st, sort, w)
	if err != nil {
		return nil, err
	}
	objects, err := s.renderPage(ctx, user, page, filter, func(ctx context.Context, child Node) (int64, error) {
		return s.resolver.SearchCount(ctx, child, user, st)
	})
	if err != nil {
		return nil, err
	}
	return s.enumerationResponse(objects, len(page.Nodes), page.Total)
}

// browseByLetter delegates to Search wholesale. True letter filtering has
// never been implemented; the clients that send it accept search results.
func (s *Service) browseByLetter(ctx context.Context, user library.User, req Request) (Response, error) {
	return s.search(ctx, user, req)
}

// renderPage serializes a child page, issuing a count-only follow-up query
// for every folder-like child so its childCount attribute is authoritative.
// A nil counter uses the browse dispatch rules.
func (s *Service) renderPage(ctx context.Context, user library.User, page Page, filter Filter, counter func(context.Context, Node) (int64, error)) ([]didl.Object, error) {
	objects := make([]didl.Object, 0, len(page.Nodes))
	for _, child := range page.Nodes {
		if !child.FolderLike() {
			objects = append(objects, s.presenter.ItemElement(child, user, filter))
			continue
		}
		var count int64
		var err error
		if counter != nil {
			count, err = counter(ctx, child)
		} else {
			count, err = s.resolver.ChildCount(ctx, child, user)
		}
		if err != nil {
			return nil, err
		}
		objects = append(objects, s.presenter.FolderElement(child, user, count, filter))
	}
	return objects, nil
}

func (s *Service) enumerationResponse(objects []didl.Object, returned int, total int64) (Response, error) {
	xml, err := s.presenter.Render(objects)
	if err != nil {
		return nil, err
	}
	return Response{
		{Name: "Result", Value: xml},
		{Name: "NumberReturned", Value: strconv.Itoa(returned)},
		{Name: "TotalMatches", Value: strconv.FormatInt(total, 10)},
		{Name: "UpdateID", Value: s.updateID()},
	}, nil
}

func (s *Service) setBookmark(ctx context.Context, user library.User, req Request) (Response, error) {
	node := s.codec.Decode(ctx, req.Param("ObjectID"), user)
	seconds, err := strconv.ParseInt(strings.TrimSpace(req.Param("PosSecond")), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: PosSecond %q", ErrInvalidArgument, req.Param("PosSecond"))
	}
	if err := s.userData.SetPlaybackPosition(ctx, user, node.Item.ID, seconds*library.TicksPerSecond); err != nil {
		return nil, err
	}
	return Response{}, nil
}

func (s *Service) searchCaps(context.Context, library.User, Request) (Response, error) {
	return Response{{Name: "SearchCaps", Value: searchCapabilities}}, nil
}

func (s *Service) sortCaps(context.Context, library.User, Request) (Response, error) {
	return Response{{Name: "SortCaps", Value: sortCapabilities}}, nil
}

func (s *Service) sortExtensionCaps(context.Context, library.User, Request) (Response, error) {
	return Response{{Name: "SortExtensionCaps", Value: sortExtensionCapabilities}}, nil
}

func (s *Service) systemUpdateID(context.Context, library.User, Request) (Response, error) {
	return Response{{Name: "Id", Value: s.updateID()}}, nil
}

func (s *Service) features(context.Context, library.User, Request) (Response, error) {
	return Response{{Name: "FeatureList", Value: featureList}}, nil
}

func (s *Service) updateID() string {
	return strconv.FormatUint(s.updates.UpdateID(), 10)
}
