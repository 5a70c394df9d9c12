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


// Package retrieval provides hybrid keyword and semantic search over the
// poetry corpus.
//
// The Retriever type combines two candidate channels:
//   - Keyword search by substring match against poem titles and bodies
//   - Semantic search using vector embeddings of the query
//
// In hybrid mode the channels are merged keyword-first, deduplicated, and
// truncated to the requested result count. A vector channel failure degrades
// a hybrid search to keyword-only results rather than failing the query.
package retrieval
