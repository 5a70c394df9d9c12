// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package retrieval

import "errors"

var (
	// ErrInvalidQuery is returned when the query is empty or whitespace-only.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidMode is returned when the retrieval mode is not recognized.
	ErrInvalidMode = errors.New("invalid retrieval mode")

	// ErrRetrievalUnavailable is returned when a vector-only search cannot
	// reach the embedding service or the similarity index.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrPoemRepositoryRequired is returned when a poem repository is not provided.
	ErrPoemRepositoryRequired = errors.New("poem repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)
