package tilematch_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hupe1980/tilematch"
	"github.com/hupe1980/tilematch/match"
	"github.com/hupe1980/tilematch/resource"
)

func ExampleMatchAllIntegral() {
	images := [][]int32{{1, 2}, {5, 5}}
	tiles := [][]int32{{1, 2}, {0, 0}, {5, 5}}

	idx, err := tilematch.MatchAllIntegral(context.Background(), images, tiles)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(idx)
	// Output: [0 2]
}

func ExampleMatchAllFloating() {
	images := [][]float64{{0.1, 0.9}, {0.5, 0.5}}
	tiles := [][]float64{{0, 1}, {1, 0}, {0.5, 0.5}}

	pool := resource.NewController(resource.Config{MaxWorkers: 4})
	idx, err := tilematch.MatchAllFloating(context.Background(), images, tiles,
		tilematch.WithController(pool),
		tilematch.WithParallelism(tilematch.ParallelNested),
	)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(idx)
	// Output: [0 2]
}

func ExampleWithEmptyLibraryPolicy() {
	_, err := tilematch.MatchAllIntegral(context.Background(), [][]int32{{1}}, nil,
		tilematch.WithEmptyLibraryPolicy(match.Fail),
	)
	fmt.Println(errors.Is(err, tilematch.ErrEmptyTileLibrary))
	// Output: true
}
