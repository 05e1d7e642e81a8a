package schema

import (
	"fmt"
	"reflect"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Context holds struct-mapping configuration and caches struct metadata.
// It is safe for concurrent use.
type Context struct {
	namingStrategy NamingStrategy
	tagName        string
	caseSensitive  bool

	entityCache *lru.Cache[reflect.Type, *EntityMeta]
	cacheSize   int
	onEvict     func(reflect.Type, *EntityMeta)
}

type Option func(*Context)

// WithNamingStrategy sets how field names map to column names
func WithNamingStrategy(strategy NamingStrategy) Option {
	return func(ctx *Context) { ctx.namingStrategy = strategy }
}

// WithTagName sets the struct tag name to use for column mapping
func WithTagName(tagName string) Option {
	return func(ctx *Context) { ctx.tagName = tagName }
}

// WithCaseSensitive enables or disables case-sensitive column matching
func WithCaseSensitive(sensitive bool) Option {
	return func(ctx *Context) { ctx.caseSensitive = sensitive }
}

// WithCacheSize sets the LRU cache size for struct metadata
func WithCacheSize(size int) Option {
	return func(ctx *Context) { ctx.cacheSize = size }
}

// WithEvictionCallback sets a callback function for cache eviction events
func WithEvictionCallback(onEvict func(reflect.Type, *EntityMeta)) Option {
	return func(ctx *Context) { ctx.onEvict = onEvict }
}

// New creates a mapping context.
func New(options ...Option) *Context {
	ctx := &Context{
		namingStrategy: DefaultNamingStrategy(),
		tagName:        "db",
		cacheSize:      256,
	}
	for _, opt := range options {
		opt(ctx)
	}
	if ctx.cacheSize <= 0 {
		ctx.cacheSize = 256
	}

	var err error
	if ctx.onEvict != nil {
		ctx.entityCache, err = lru.NewWithEvict(ctx.cacheSize, ctx.onEvict)
	} else {
		ctx.entityCache, err = lru.New[reflect.Type, *EntityMeta](ctx.cacheSize)
	}
	if err != nil {
		// lru only fails on a non-positive size, excluded above.
		panic(err)
	}
	return ctx
}

var defaultContext = New()

// Default returns the shared context used when none is supplied.
func Default() *Context {
	return defaultContext
}

// Introspect returns the mapping metadata of a struct type.
func (c *Context) Introspect(t reflect.Type) (*EntityMeta, error) {
	if t == nil {
		return nil, fmt.Errorf("invalid model type: nil")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("invalid model type: %s", t.Kind())
	}
	if meta, ok := c.entityCache.Get(t); ok {
		return meta, nil
	}

	meta := c.buildMeta(t)
	c.entityCache.Add(t, meta)
	return meta, nil
}

// CacheLen returns the number of cached struct types.
func (c *Context) CacheLen() int {
	return c.entityCache.Len()
}

func (c *Context) buildMeta(t reflect.Type) *EntityMeta {
	meta := &EntityMeta{
		Type:          t,
		Name:          t.Name(),
		FieldMap:      make(map[string]*FieldMeta),
		ColumnMap:     make(map[string]*FieldMeta),
		aliases:       make(map[string]*FieldMeta),
		caseSensitive: c.caseSensitive,
	}
	c.collectFields(meta, t, nil)
	return meta
}

func (c *Context) collectFields(meta *EntityMeta, t reflect.Type, parent []int) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int(nil), parent...), i)

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			if _, tagged := sf.Tag.Lookup(c.tagName); !tagged {
				c.collectFields(meta, sf.Type, index)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}

		tag := parseTag(sf.Name, sf.Tag, c.tagName, c.namingStrategy)
		if tag.Skip {
			continue
		}

		field := &FieldMeta{
			Name:   sf.Name,
			Column: tag.ColumnName,
			Type:   sf.Type,
			Index:  index,
			Tag:    tag,
		}
		meta.Fields = append(meta.Fields, field)
		meta.FieldMap[sf.Name] = field

		key := meta.normalize(field.Column)
		if _, exists := meta.ColumnMap[key]; !exists {
			meta.ColumnMap[key] = field
		}
		if !tag.Explicit {
			meta.aliases[meta.normalize(sf.Name)] = field
			meta.aliases[meta.normalize(toSnakeCase(sf.Name))] = field
		}
	}
}
