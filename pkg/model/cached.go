package model

import (
	"context"

	"clinex/pkg/cache"
	"clinex/pkg/core"
)

// CachedModel serves repeated prompts from the response cache, so reruns over
// the same filtered note set do not hit the provider again.
type CachedModel struct {
	Model core.Model
	Cache *cache.Cache
}

func (c CachedModel) Name() string {
	if c.Model == nil {
		return ""
	}
	return c.Model.Name()
}

func (c CachedModel) Generate(ctx context.Context, prompt string, opts core.GenerateOptions) (core.Response, error) {
	if c.Model == nil {
		return core.Response{}, nil
	}
	if c.Cache == nil {
		return c.Model.Generate(ctx, prompt, opts)
	}

	name := c.Model.Name()
	if resp, hit := c.Cache.Get(name, prompt, opts); hit {
		return resp, nil
	}

	resp, err := c.Model.Generate(ctx, prompt, opts)
	if err != nil {
		return core.Response{}, err
	}
	_ = c.Cache.Set(name, prompt, opts, resp)
	return resp, nil
}
