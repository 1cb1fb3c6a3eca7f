package audio

import (
	"context"
	"fmt"
	"io/fs"
)

// Resolver loads the bytes of one clip. Implementations return an error
// wrapping fs.ErrNotExist when the clip does not exist.
type Resolver interface {
	Resolve(ctx context.Context, key ClipKey) (*Clip, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, key ClipKey) (*Clip, error)

func (f ResolverFunc) Resolve(ctx context.Context, key ClipKey) (*Clip, error) {
	return f(ctx, key)
}

// FSResolver reads clips laid out as HSK<level>/batch<NN>/<key>.mp3.
type FSResolver struct {
	fsys      fs.FS
	batchSize int
}

func NewFSResolver(fsys fs.FS, batchSize int) *FSResolver {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &FSResolver{fsys: fsys, batchSize: batchSize}
}

func (r *FSResolver) Resolve(ctx context.Context, key ClipKey) (*Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := ClipPath(key, r.batchSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fs.ErrNotExist, err)
	}
	return readClip(r.fsys, key, p)
}

// BundleResolver looks clips up in a prebuilt bundle index.
type BundleResolver struct {
	fsys  fs.FS
	index *BundleIndex
}

func NewBundleResolver(fsys fs.FS, index *BundleIndex) *BundleResolver {
	return &BundleResolver{fsys: fsys, index: index}
}

func (r *BundleResolver) Resolve(ctx context.Context, key ClipKey) (*Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := r.index.Clips[string(key)]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not in the bundle index", fs.ErrNotExist, key)
	}
	return readClip(r.fsys, key, p)
}

func readClip(fsys fs.FS, key ClipKey, p string) (*Clip, error) {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, err
	}
	return &Clip{Key: key, Path: p, Data: data}, nil
}
