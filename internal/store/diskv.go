package store

import (
	"context"
	"encoding/base32"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"

	"prioritize/internal/model"
)

const (
	diskvItemsCollection = "items"
	diskvMetaCollection  = "meta"
	diskvVersionKey      = diskvMetaCollection + "-version"
)

// Item ids may contain '-', which the key transform uses as a path separator.
var diskvIDEncoding = base32.HexEncoding.WithPadding(base32.NoPadding)

// Diskv keeps one file per item under <dir>/items/, plus the document version under
// <dir>/meta/. Saves are not transactional: a crash mid-save can leave a mix, which the tree
// then rejects on load. Saves through one Diskv run one at a time.
type Diskv struct {
	d        *diskv.Diskv
	basePath string

	saveMu sync.Mutex
}

func NewDiskv(basePath string) *Diskv {
	return &Diskv{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		basePath: basePath,
	}
}

func (d *Diskv) Name() string { return BackendDiskv }

func (d *Diskv) LoadDocument(ctx context.Context) (model.Document, error) {
	if err := ctx.Err(); err != nil {
		return model.Document{}, err
	}
	if !d.d.Has(diskvVersionKey) {
		return emptyDocument(), nil
	}
	raw, err := d.d.Read(diskvVersionKey)
	if err != nil {
		return model.Document{}, err
	}
	version, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return model.Document{}, fmt.Errorf("%w: version %q", model.ErrMalformed, raw)
	}

	doc := model.Document{Version: version, Items: []model.Item{}}
	for key := range d.d.Keys(ctx.Done()) {
		pk := keyToPathTransform(key)
		if len(pk.Path) == 0 || pk.Path[0] != diskvItemsCollection {
			continue
		}
		val, err := d.d.Read(key)
		if err != nil {
			return model.Document{}, err
		}
		var it model.Item
		if err := json.Unmarshal(val, &it); err != nil {
			return model.Document{}, fmt.Errorf("%w: %s: %v", model.ErrMalformed, key, err)
		}
		doc.Items = append(doc.Items, it)
	}
	if err := ctx.Err(); err != nil {
		return model.Document{}, err
	}
	sort.Slice(doc.Items, func(i, j int) bool { return doc.Items[i].ID < doc.Items[j].ID })
	return doc, nil
}

// SaveDocument writes every item, erases the ones no longer in doc and writes the version last.
// A cancelled ctx stops it before anything is erased, so a partial save never drops items.
func (d *Diskv) SaveDocument(ctx context.Context, doc model.Document) error {
	d.saveMu.Lock()
	defer d.saveMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	keep := make(map[string]bool, len(doc.Items))
	for _, it := range doc.Items {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := itemKey(it.ID)
		data, err := json.Marshal(it)
		if err != nil {
			return err
		}
		if err := d.d.Write(key, data); err != nil {
			return fmt.Errorf("write item %s: %w", it.ID, err)
		}
		keep[key] = true
	}

	var stale []string
	for key := range d.d.Keys(ctx.Done()) {
		if pk := keyToPathTransform(key); len(pk.Path) > 0 && pk.Path[0] == diskvItemsCollection && !keep[key] {
			stale = append(stale, key)
		}
	}
	// Keys stops early on cancel; stale is only complete when ctx is still live.
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, key := range stale {
		if err := d.d.Erase(key); err != nil {
			return fmt.Errorf("erase %s: %w", key, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.d.Write(diskvVersionKey, []byte(strconv.Itoa(doc.Version)))
}

// keyToPathTransform maps "collection-name" to <collection>/<name>.
func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

func itemKey(id string) string {
	return diskvItemsCollection + "-" + strings.ToLower(diskvIDEncoding.EncodeToString([]byte(id)))
}
