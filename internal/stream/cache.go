package stream

import (
	"errors"
	"fmt"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/joshuapare/prefetchkit/internal/lzxpress"
	"github.com/joshuapare/prefetchkit/pkg/types"
)

// BlockCache maps block indexes to decompressed bytes, holding at most
// Capacity blocks and evicting the least recently used one first. Misses are
// decompressed from the block's compressed range in the byte source.
type BlockCache struct {
	lru      *simplelru.LRU[int, []byte]
	capacity int
	table    *BlockTable
	src      types.ByteSource
	dec      types.Decompressor
	metrics  types.MetricsSink
}

func newBlockCache(capacity int, table *BlockTable, src types.ByteSource, dec types.Decompressor, metrics types.MetricsSink) (*BlockCache, error) {
	lru, err := simplelru.NewLRU[int, []byte](capacity, nil)
	if err != nil {
		return nil, fmt.Errorf("block cache: %w", err)
	}
	return &BlockCache{
		lru:      lru,
		capacity: capacity,
		table:    table,
		src:      src,
		dec:      dec,
		metrics:  metrics,
	}, nil
}

// Get returns block i, decompressing it on a miss.
func (c *BlockCache) Get(i int) ([]byte, error) {
	if i < 0 || i >= c.table.Len() {
		return nil, fmt.Errorf("%w: block %d of %d", ErrInvalidOffset, i, c.table.Len())
	}
	if data, ok := c.lru.Get(i); ok {
		if c.metrics != nil {
			c.metrics.CacheHit()
		}
		return data, nil
	}
	if c.metrics != nil {
		c.metrics.CacheMiss()
	}
	data, err := c.load(i)
	if err != nil {
		return nil, err
	}
	c.put(i, data)
	return data, nil
}

// put stores data for block i, evicting as needed.
func (c *BlockCache) put(i int, data []byte) {
	if evicted := c.lru.Add(i, data); evicted && c.metrics != nil {
		c.metrics.CacheEvict()
	}
}

// Len returns the number of resident blocks.
func (c *BlockCache) Len() int { return c.lru.Len() }

// Capacity returns the maximum number of resident blocks.
func (c *BlockCache) Capacity() int { return c.capacity }

// Contains reports whether block i is resident without touching recency.
func (c *BlockCache) Contains(i int) bool { return c.lru.Contains(i) }

// Clear drops every resident block.
func (c *BlockCache) Clear() { c.lru.Purge() }

func (c *BlockCache) load(i int) ([]byte, error) {
	b := c.table.Blocks[i]
	comp := make([]byte, b.CompressedSize)
	if err := readFull(c.src, comp, b.CompressedOffset); err != nil {
		return nil, fmt.Errorf("block %d: %w", i, err)
	}

	out, _, err := c.dec.Decompress(comp, b.UncompressedSize, nil)
	if errors.Is(err, lzxpress.ErrHistoryRequired) && i > 0 {
		var history []byte
		history, err = c.history(i)
		if err != nil {
			return nil, err
		}
		out, _, err = c.dec.Decompress(comp, b.UncompressedSize, history)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: block %d: %w", ErrDecompress, i, err)
	}
	if len(out) != b.UncompressedSize {
		return nil, fmt.Errorf("%w: block %d produced %d bytes, indexed %d", ErrDecompress, i, len(out), b.UncompressedSize)
	}
	if c.metrics != nil {
		c.metrics.BlockDecompressed(len(out))
	}
	return out, nil
}

// history assembles up to lzxpress.MaxMatchOffset bytes of output preceding
// block i, loading earlier blocks through the cache.
func (c *BlockCache) history(i int) ([]byte, error) {
	var parts [][]byte
	total := 0
	for j := i - 1; j >= 0 && total < lzxpress.MaxMatchOffset; j-- {
		data, err := c.Get(j)
		if err != nil {
			return nil, err
		}
		parts = append(parts, data)
		total += len(data)
	}
	h := make([]byte, 0, total)
	for k := len(parts) - 1; k >= 0; k-- {
		h = append(h, parts[k]...)
	}
	return h, nil
}
