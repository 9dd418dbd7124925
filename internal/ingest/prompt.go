package ingest

const refineSystemPrompt = `You are an academic assistant. Prepare the following paper text for later analysis:
1. Remove references, acknowledgements, appendices, and other non-core material.
2. Keep the abstract, methods, results, and other core sections.
3. Keep the heading structure of the original.
4. Preserve key data and research content intact.
5. Write concisely, in the same language as the original paper.`
